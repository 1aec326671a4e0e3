package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/job-scout/internal/search"
)

// Not parallel: getConfig reads the global viper instance.
func TestGetConfigDebounce(t *testing.T) {
	t.Cleanup(func() { viper.Set("search.debounce", search.DefaultDebounce.String()) })

	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{value: "300ms", want: 300 * time.Millisecond},
		{value: "1s", want: time.Second},
		{value: "0s", want: 0},
		{value: "50ms", wantErr: true},
		{value: "299ms", wantErr: true},
		{value: "-1s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			viper.Set("search.debounce", tt.value)

			config, err := getConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected %s to be rejected, got %s", tt.value, config.Search.Debounce)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if config.Search.Debounce != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, config.Search.Debounce)
			}
		})
	}
}
