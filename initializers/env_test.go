package initializers

import (
	"testing"

	"github.com/spf13/viper"
)

func TestReadConfig(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TOKEN_EXPIRY_MINUTES", "15")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg, err := readConfig(v)
	if err != nil {
		t.Fatalf("readConfig() error: %v", err)
	}
	if cfg.SecretKey != "s3cret" || cfg.DBDriver != "postgres" || cfg.TokenExpiry != 15 {
		t.Errorf("readConfig() = %+v", cfg)
	}
	if cfg.ServerPort != "8080" || cfg.MediaURL != "/media" || cfg.MaxImageBytes != 5<<20 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestReadConfigRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if _, err := readConfig(v); err == nil {
		t.Error("readConfig() without SECRET_KEY should fail")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"alice", []string{"alice"}},
		{" alice , ,bob ", []string{"alice", "bob"}},
	}
	for _, tt := range tests {
		got := SplitList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}
