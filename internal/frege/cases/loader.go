package cases

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

// Load reads a single case file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := mdwerror.CodeInternal
		if os.IsNotExist(err) {
			code = mdwerror.CodeNotFound
		}
		return nil, mdwerror.Wrap(err, "failed to read case file").
			WithCode(code).
			WithOperation("cases.Load").
			WithDetail("path", path)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse case file").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("cases.Load").
			WithDetail("path", path)
	}

	file.SourceFile = path
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// LoadPath loads path itself when it is a file, or every YAML file in it
// when it is a directory
func LoadPath(path string) ([]*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "case path not accessible").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("cases.LoadPath").
			WithDetail("path", path)
	}
	if !info.IsDir() {
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		return []*File{f}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to list case directory").
			WithCode(mdwerror.CodeInternal).
			WithOperation("cases.LoadPath")
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isYAMLFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]*File, 0, len(names))
	for _, name := range names {
		f, err := Load(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Validate checks that every case states exactly one expectation
func (f *File) Validate() error {
	for i, c := range f.Cases {
		if problem := c.problem(); problem != "" {
			return mdwerror.Newf("case %d (%s) %s", i+1, c.Name, problem).
				WithCode(mdwerror.CodeValidationFailed).
				WithOperation("cases.Validate").
				WithDetail("file", f.SourceFile)
		}
	}
	return nil
}

// problem describes why c cannot be run, or returns ""
func (c Case) problem() string {
	set := 0
	if c.Expect != nil {
		set++
	}
	if c.Fail != "" {
		set++
	}
	if c.Error != "" {
		set++
	}
	if set != 1 {
		return "must set exactly one of expect, fail or error"
	}
	if c.Error != "" && !mdwerror.Code(strings.ToUpper(c.Error)).IsValid() {
		return fmt.Sprintf("names unknown error code %q", c.Error)
	}
	return ""
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
