// Package hostconfig loads the reference host's presentation settings: the
// window size, text wrap width, on-disk asset directories, and whether
// audio is enabled (§1
// "out of scope": "Configuration loading (TOML key/value binding) and
// on-disk asset discovery" — a collaborator of the core, not the core
// itself).
package hostconfig

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is a typed key/value store, adapted from the teacher's
// Config/cfgVal pattern (go/config.go) generalized from compiler flags to
// host presentation settings and given a file loader, since no example
// repo in the retrieval pack actually imports a TOML library despite one
// being a transitive dependency of several — see DESIGN.md.
type Config map[string]*cfgVal

// NewConfig returns a Config primed with the reference host's defaults.
func NewConfig() *Config {
	c := make(Config)
	c.SetInt("window.width", 30)
	c.SetInt("window.height", 18)
	c.SetInt("text.line_max_len", 28)
	c.SetString("asset.image_dir", "assets/images")
	c.SetString("asset.music_dir", "assets/music")
	c.SetBool("audio.enabled", true)
	return &c
}

type cfgValType int

const (
	cfgValTypeUndefined cfgValType = iota
	cfgValTypeBool
	cfgValTypeInt
	cfgValTypeString
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValTypeUndefined: "undefined",
		cfgValTypeBool:      "bool",
		cfgValTypeInt:       "int",
		cfgValTypeString:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValTypeUndefined {
		panic(fmt.Sprintf("can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve `%s` from `%s` setting", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeBool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeInt)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeString)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeBool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeInt)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeString)
		return val.asString
	}
	panic(fmt.Sprintf("string setting `%s` does not exist", path))
}

// LoadFile merges `key = value` lines from path into c, inferring the type
// of each value from its spelling (quoted -> string, true/false -> bool,
// digits -> int). Missing file is not an error: the defaults stand.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("%s:%d: malformed line %q", path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch {
		case strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`):
			c.SetString(key, strings.Trim(val, `"`))
		case val == "true":
			c.SetBool(key, true)
		case val == "false":
			c.SetBool(key, false)
		default:
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s:%d: unrecognised value %q for %q", path, lineNo, val, key)
			}
			c.SetInt(key, n)
		}
	}
	return scanner.Err()
}
