// NSA (shader/material definition) format parser. NSA files are text:
// blocks of "Name { key value ... }" mapping material names to textures
// and shader parameters.
package formats

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NSAMaterial is one parsed material block. Params holds every key/value
// pair; well-known keys (texture, shader, glow, envmap, detail, sound) are
// accessed through Params directly.
type NSAMaterial struct {
	Name   string
	Params map[string]string
}

// Texture returns the primary texture name, or "".
func (m *NSAMaterial) Texture() string { return m.Params["texture"] }

// Shader returns the shader type, or "".
func (m *NSAMaterial) Shader() string { return m.Params["shader"] }

// ParseNSA parses NSA text into material definitions. Lines starting with
// ";" or "//" are comments; nested brace blocks inside a material are
// skipped but do not end it.
func ParseNSA(text string) map[string]NSAMaterial {
	materials := make(map[string]NSAMaterial)
	lines := strings.Split(text, "\n")
	pos := 0

	next := func() (string, bool) {
		for pos < len(lines) {
			line := strings.TrimSpace(lines[pos])
			pos++
			if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//") {
				continue
			}
			return line, true
		}
		return "", false
	}

	// A stray line that never gets its "{" is abandoned in favor of the
	// next candidate name rather than consuming it.
	name := ""
	for {
		line, ok := next()
		if !ok {
			break
		}
		if name == "" || line != "{" {
			name = line
			continue
		}

		params := make(map[string]string)
		depth := 0
		for {
			line, ok := next()
			if !ok {
				break
			}
			if line == "{" {
				depth++
				continue
			}
			if line == "}" {
				if depth > 0 {
					depth--
					continue
				}
				break
			}
			parts := strings.SplitN(line, " ", 2)
			key := strings.TrimSpace(parts[0])
			if len(parts) == 2 {
				params[key] = strings.TrimSpace(parts[1])
			} else {
				params[key] = ""
			}
		}

		materials[name] = NSAMaterial{Name: name, Params: params}
		name = ""
	}

	return materials
}

// ParseNSADir parses every .nsa file in a directory, case-insensitively
// deduplicated by file name, into one combined material table.
func ParseNSADir(dir string) (map[string]NSAMaterial, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading NSA directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".nsa") {
			continue
		}
		key := strings.ToLower(e.Name())
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, e.Name())
	}
	sort.Strings(names)

	all := make(map[string]NSAMaterial)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		for k, v := range ParseNSA(string(data)) {
			all[k] = v
		}
	}
	return all, nil
}

// FindTextures walks directories collecting .dds files by base name.
// Earlier directories win on name collisions.
func FindTextures(dirs ...string) map[string]string {
	textures := make(map[string]string)
	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".dds") {
				return nil
			}
			name := filepath.Base(path)
			if _, ok := textures[name]; !ok {
				textures[name] = path
			}
			return nil
		})
	}
	return textures
}

// BuildMaterialMap resolves each material's texture against a texture index,
// keyed by lowercase material name. Resolution tries the exact texture name,
// then name+".dds", then both again case-insensitively.
func BuildMaterialMap(materials map[string]NSAMaterial, textures map[string]string) map[string]string {
	lower := make(map[string]string, len(textures))
	for name, path := range textures {
		lower[strings.ToLower(name)] = path
	}

	out := make(map[string]string)
	for name, mat := range materials {
		tex := mat.Texture()
		if tex == "" {
			continue
		}
		key := strings.ToLower(name)
		switch {
		case textures[tex] != "":
			out[key] = textures[tex]
		case textures[tex+".dds"] != "":
			out[key] = textures[tex+".dds"]
		case lower[strings.ToLower(tex)] != "":
			out[key] = lower[strings.ToLower(tex)]
		case lower[strings.ToLower(tex)+".dds"] != "":
			out[key] = lower[strings.ToLower(tex)+".dds"]
		}
	}
	return out
}
