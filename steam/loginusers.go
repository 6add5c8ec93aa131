package steam

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
)

const accountIDMask = 0xFFFFFFFF

// LoginUser is an account remembered by the Steam client
type LoginUser struct {
	SteamID64   uint64
	AccountID   uint32
	AccountName string
	PersonaName string
	MostRecent  bool
}

// ReadLoginUsers parses config/loginusers.vdf and indexes the accounts by
// the 32-bit account id used for userdata/ directory names.
func ReadLoginUsers(path string) (map[uint32]LoginUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parsed, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %w", path, err)
	}

	users := make(map[uint32]LoginUser)
	root, _ := lookupMap(parsed, "users")
	for key, value := range root {
		steamID64, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		fields, ok := value.(map[string]interface{})
		if !ok {
			continue
		}

		user := LoginUser{
			SteamID64:   steamID64,
			AccountID:   uint32(steamID64 & accountIDMask),
			AccountName: lookupString(fields, "AccountName"),
			PersonaName: lookupString(fields, "PersonaName"),
			MostRecent:  lookupString(fields, "MostRecent") == "1",
		}
		users[user.AccountID] = user
	}

	return users, nil
}

// lookupMap finds a nested map by key, ignoring case
func lookupMap(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			nested, ok := v.(map[string]interface{})
			return nested, ok
		}
	}
	return nil, false
}

func lookupString(m map[string]interface{}, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}
