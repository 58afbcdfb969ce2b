package config

import (
	"flag"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{EnvDir, EnvCamera, EnvLang, EnvTTS, EnvVoice, EnvRate, EnvVolume, EnvPan, EnvOpenAIKey} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.Lang != DefaultLang || c.TTS != DefaultTTS() {
		t.Errorf("Lang=%q TTS=%q", c.Lang, c.TTS)
	}
	if c.Rate != 1 || c.Volume != 1 || c.Pan != 0 {
		t.Errorf("Rate=%g Volume=%g Pan=%g", c.Rate, c.Volume, c.Pan)
	}
	if c.Dir == "" {
		t.Error("Dir should default to something")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvDir, "/photos")
	t.Setenv(EnvLang, "eng+deu")
	t.Setenv(EnvTTS, "openai")
	t.Setenv(EnvOpenAIKey, "sk-x")
	t.Setenv(EnvRate, "1.5")
	t.Setenv(EnvVolume, "not-a-number")
	t.Setenv(EnvPan, "-0.25")
	t.Setenv(EnvCamera, "grab -o")

	c := Load()
	if c.Dir != "/photos" || c.TTS != "openai" || c.OpenAIKey != "sk-x" {
		t.Errorf("config = %+v", c)
	}
	if c.Rate != 1.5 || c.Volume != 1 || c.Pan != -0.25 {
		t.Errorf("Rate=%g Volume=%g Pan=%g", c.Rate, c.Volume, c.Pan)
	}
	if got := c.Languages(); len(got) != 2 || got[1] != "deu" {
		t.Errorf("Languages = %v", got)
	}
	if got := strings.Join(c.CameraCommand(), " "); got != "grab -o {out}" {
		t.Errorf("CameraCommand = %q", got)
	}
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv(EnvVoice, "en-us")
	c := Load()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-voice", "en-gb", "-pan", "1"}); err != nil {
		t.Fatal(err)
	}
	if c.Voice != "en-gb" || c.Pan != 1 {
		t.Errorf("Voice=%q Pan=%g", c.Voice, c.Pan)
	}
	p := c.Profile()
	if p.Voice != "en-gb" || p.Pan != 1 || p.Rate != c.Rate {
		t.Errorf("Profile = %+v", p)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Lang: "eng", TTS: "espeak", Rate: 1, Volume: 1}
	for _, tt := range []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"ok", func(*Config) {}, ""},
		{"zero rate", func(c *Config) { c.Rate = 0 }, "rate"},
		{"loud", func(c *Config) { c.Volume = 1.5 }, "volume"},
		{"pan", func(c *Config) { c.Pan = -2 }, "pan"},
		{"engine", func(c *Config) { c.TTS = "robot" }, "unknown speech engine"},
		{"openai key", func(c *Config) { c.TTS = "openai" }, EnvOpenAIKey},
		{"lang", func(c *Config) { c.Lang = " " }, "language"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("err = %v, want containing %q", err, tt.errSub)
			}
		})
	}
}
