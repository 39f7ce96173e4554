// Package config holds the settings of an imgdiff run and loads them from
// JSON5 files.
package config

import (
	"io"
	"reflect"

	"github.com/flynn/json5"

	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/util"
)

// Config is the configuration of one run. Fields without an optional tag must
// be non-zero after loading.
type Config struct {
	// GoodDir is the baseline tree.
	GoodDir string `json:"good_dir"`

	// BadDir is the candidate tree, mirrored path for path against GoodDir.
	BadDir string `json:"bad_dir"`

	// ArtifactDir is where diff images are stored, named by content.
	ArtifactDir string `json:"artifact_dir"`

	// HTMLReport is the path of the generated HTML page.
	HTMLReport string `json:"html_report" optional:"true"`

	// JSONReport, if set, is the path of a JSON report. A ".gz" suffix
	// compresses it.
	JSONReport string `json:"json_report" optional:"true"`

	// Extension selects which files under GoodDir are compared.
	Extension string `json:"extension" optional:"true"`

	// Workers bounds the number of pairs compared at once. Zero or less
	// means one per CPU.
	Workers int `json:"workers" optional:"true"`

	// PromPort, e.g. ":20000", serves Prometheus metrics while running.
	PromPort string `json:"prom_port" optional:"true"`

	// Verbose lists every pair that is not equal and enables debug logging.
	Verbose bool `json:"verbose"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		GoodDir:     "good",
		BadDir:      "bad",
		ArtifactDir: "/tmp",
		HTMLReport:  "ugly.html",
		Extension:   ".png",
	}
}

// LoadFromJSON5 reads the JSON5 file at path on top of Default() and checks
// that every required field is set.
func LoadFromJSON5(path string) (Config, error) {
	cfg := Default()
	err := util.WithReadFile(path, func(r io.Reader) error {
		return json5.NewDecoder(r).Decode(&cfg)
	})
	if err != nil {
		return Config{}, skerr.Wrapf(err, "reading config at %s", path)
	}
	if err := checkRequired(reflect.ValueOf(cfg)); err != nil {
		return Config{}, skerr.Wrapf(err, "validating config at %s", path)
	}
	return cfg, nil
}

// checkRequired returns an error if any field of the struct rValue that has a
// json tag, is not a bool and is not tagged optional holds its zero value.
func checkRequired(rValue reflect.Value) error {
	rType := rValue.Type()
	for i := 0; i < rValue.NumField(); i++ {
		field := rType.Field(i)
		if field.Type.Kind() == reflect.Struct {
			if err := checkRequired(rValue.Field(i)); err != nil {
				return err
			}
			continue
		}
		if field.Type.Kind() == reflect.Bool {
			continue
		}
		if field.Tag.Get("json") == "" || field.Tag.Get("optional") == "true" {
			continue
		}
		if rValue.Field(i).IsZero() {
			return skerr.Fmt("Required %s to be non-zero", field.Name)
		}
	}
	return nil
}
