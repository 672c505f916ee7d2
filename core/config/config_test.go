package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Exec:          "echo $0",
		Delimiter:     DefaultDelimiter,
		Quote:         DefaultQuote,
		ArgRegex:      DefaultArgRegex,
		NewColumnName: DefaultNewColumnName,
	}
}

func TestValidate(t *testing.T) {
	assert.Nil(t, validConfig().Validate())
}

func TestValidate_missingFields(t *testing.T) {
	cases := map[string]func(*Config){
		"exec":            func(c *Config) { c.Exec = "" },
		"delimiter":       func(c *Config) { c.Delimiter = "" },
		"quote":           func(c *Config) { c.Quote = "" },
		"arg_regex":       func(c *Config) { c.ArgRegex = "" },
		"new_column_name": func(c *Config) { c.NewColumnName = "" },
	}

	for field, clear := range cases {
		t.Run(field, func(t *testing.T) {
			cfg := validConfig()
			clear(cfg)

			err := cfg.Validate()
			assert.NotNil(t, err)
			// Errors report the JSON field name, not the Go field name.
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestDelimiterByte(t *testing.T) {
	cases := map[string]struct {
		value   string
		want    byte
		wantErr bool
	}{
		"comma":       {value: ",", want: ','},
		"semicolon":   {value: ";", want: ';'},
		"tab escape":  {value: `\t`, want: '\t'},
		"literal tab": {value: "\t", want: '\t'},
		"empty":       {value: "", wantErr: true},
		"two chars":   {value: "ab", wantErr: true},
		"non-ascii":   {value: "€", wantErr: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := validConfig()
			cfg.Delimiter = tc.value

			got, err := cfg.DelimiterByte()
			if tc.wantErr {
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestQuoteByte(t *testing.T) {
	cfg := validConfig()
	got, err := cfg.QuoteByte()
	assert.Nil(t, err)
	assert.Equal(t, byte('"'), got)

	cfg.Quote = "'"
	got, err = cfg.QuoteByte()
	assert.Nil(t, err)
	assert.Equal(t, byte('\''), got)

	// Unlike the delimiter, the quote has no tab escape.
	cfg.Quote = `\t`
	_, err = cfg.QuoteByte()
	assert.NotNil(t, err)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fs, "csvexec.yaml", []byte(
		"delimiter: \";\"\nquote: \"'\"\nnew_column_name: Output\n"), 0644))

	cfg, err := Load(fs, "csvexec.yaml")
	assert.Nil(t, err)
	assert.Equal(t, ";", cfg.Delimiter)
	assert.Equal(t, "'", cfg.Quote)
	assert.Equal(t, "Output", cfg.NewColumnName)
	// Fields absent from the file stay zero.
	assert.Equal(t, "", cfg.Exec)
}

func TestLoad_unknownField(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fs, "csvexec.yaml", []byte("delimitter: \";\"\n"), 0644))

	_, err := Load(fs, "csvexec.yaml")
	assert.NotNil(t, err)
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.yaml")
	assert.NotNil(t, err)
}
