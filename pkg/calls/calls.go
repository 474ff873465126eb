// Package calls loads the batch of Web API calls the poller executes.
package calls

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/steam-webapi/pkg/webapi"
)

const (
	// ModeRaw returns the body as-is.
	ModeRaw = "raw"
	// ModeData checks the result envelope and returns the result object.
	ModeData = "data"
)

// Call describes one Web API request.
type Call struct {
	ID        string         `json:"id" yaml:"id"`
	Interface string         `json:"interface" yaml:"interface"`
	Method    string         `json:"method" yaml:"method"`
	Version   int            `json:"version" yaml:"version"`
	Format    string         `json:"format" yaml:"format"`
	Mode      string         `json:"mode" yaml:"mode"`
	Params    *webapi.Params `json:"params" yaml:"params"`
}

type callsFile struct {
	Calls []Call `json:"calls" yaml:"calls"`
}

// Registry holds a validated, ordered set of calls.
type Registry struct {
	calls []Call
	idx   map[string]Call
}

// LoadRegistry loads calls from a YAML or JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("calls file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open calls file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read calls file: %w", err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes and validates calls from data; ext selects the decoder
// (".yaml", ".yml", ".json") and an empty ext tries each in turn.
func Parse(data []byte, ext string) (*Registry, error) {
	file, err := parseCallsFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Calls) == 0 {
		return nil, errors.New("calls file contains no calls entries")
	}

	reg := &Registry{
		calls: make([]Call, len(file.Calls)),
		idx:   make(map[string]Call, len(file.Calls)),
	}
	for i := range file.Calls {
		c := sanitizeCall(file.Calls[i])
		if err := validateCall(c); err != nil {
			return nil, fmt.Errorf("calls[%d]: %w", i, err)
		}
		if _, exists := reg.idx[c.ID]; exists {
			return nil, fmt.Errorf("duplicate call id %q", c.ID)
		}
		reg.calls[i] = c
		reg.idx[c.ID] = c
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseCallsFile(data []byte, ext string) (callsFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file callsFile
		if err := d.fn(data, &file); err != nil {
			errs = append(errs, fmt.Errorf("decode %s calls: %w", d.name, err))
			continue
		}
		return file, nil
	}
	if len(errs) > 0 {
		return callsFile{}, errors.Join(errs...)
	}
	return callsFile{}, fmt.Errorf("calls file format %q not recognized (expected YAML or JSON)", ext)
}

func sanitizeCall(c Call) Call {
	c.ID = strings.TrimSpace(c.ID)
	c.Interface = strings.TrimSpace(c.Interface)
	c.Method = strings.TrimSpace(c.Method)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))

	if c.Format == "" {
		c.Format = string(webapi.FormatJSON)
	}
	if c.Mode == "" {
		c.Mode = ModeRaw
	}
	if c.Version <= 0 {
		c.Version = 1
	}
	if c.Params == nil {
		c.Params = webapi.NewParams()
	}
	return c
}

func validateCall(c Call) error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.Interface == "" {
		return fmt.Errorf("interface is required for call %q", c.ID)
	}
	if c.Method == "" {
		return fmt.Errorf("method is required for call %q", c.ID)
	}
	switch webapi.Format(c.Format) {
	case webapi.FormatJSON, webapi.FormatVDF, webapi.FormatXML:
	default:
		return fmt.Errorf("unsupported format %q for call %q", c.Format, c.ID)
	}
	switch c.Mode {
	case ModeRaw:
	case ModeData:
		if webapi.Format(c.Format) != webapi.FormatJSON {
			return fmt.Errorf("mode %q requires json format for call %q", ModeData, c.ID)
		}
	default:
		return fmt.Errorf("unsupported mode %q for call %q", c.Mode, c.ID)
	}
	return nil
}

// All returns the calls in file order.
func (r *Registry) All() []Call {
	if r == nil {
		return nil
	}
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// ByID returns the call with the given id.
func (r *Registry) ByID(id string) (Call, bool) {
	if r == nil {
		return Call{}, false
	}
	c, ok := r.idx[strings.TrimSpace(id)]
	return c, ok
}

// Endpoint renders the call address, e.g. ISteamNews/GetNewsForApp/v0002.
func (c Call) Endpoint() string {
	return fmt.Sprintf("%s/%s/v%04d", c.Interface, c.Method, c.Version)
}
