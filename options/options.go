// Package options merges caller-supplied scraper options with defaults and
// splits them into scraper-side and transport-side configuration.
package options

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/rnystrom/openGraphScraper/urlutil"
)

// DefaultDownloadLimit caps response bodies at one megabyte unless overridden.
const DefaultDownloadLimit int64 = 1_000_000

// MetaTag describes a custom meta tag to collect during scraping.
type MetaTag struct {
	Multiple  bool   `mapstructure:"multiple"`
	Property  string `mapstructure:"property"`
	FieldName string `mapstructure:"fieldName"`
}

// Options controls the scraper's own behavior. Fields absent from the caller
// input keep their defaults.
type Options struct {
	AllMedia             bool                      `mapstructure:"allMedia"`
	Blacklist            []string                  `mapstructure:"blacklist"`
	CustomMetaTags       []MetaTag                 `mapstructure:"customMetaTags"`
	DownloadLimit        int64                     `mapstructure:"downloadLimit"`
	OGImageFallback      bool                      `mapstructure:"ogImageFallback"`
	OnlyGetOpenGraphInfo bool                      `mapstructure:"onlyGetOpenGraphInfo"`
	PeekSize             int                       `mapstructure:"peekSize"`
	URLValidatorSettings urlutil.ValidatorSettings `mapstructure:"urlValidatorSettings"`
}

// RequestOptions configures the HTTP request layer. Extra carries any
// caller-supplied transport fields this package does not model itself.
type RequestOptions struct {
	Decompress     bool              `mapstructure:"decompress"`
	FollowRedirect bool              `mapstructure:"followRedirect"`
	Headers        map[string]string `mapstructure:"headers"`
	MaxRedirects   int               `mapstructure:"maxRedirects"`
	Extra          map[string]any    `mapstructure:",remain"`
}

// Defaults returns fully populated scraper options.
func Defaults() Options {
	return Options{
		CustomMetaTags:       []MetaTag{},
		DownloadLimit:        DefaultDownloadLimit,
		OGImageFallback:      true,
		PeekSize:             1024,
		URLValidatorSettings: urlutil.DefaultValidatorSettings(),
	}
}

// DefaultRequestOptions returns fully populated transport options.
func DefaultRequestOptions() RequestOptions {
	return RequestOptions{
		Decompress:     true,
		FollowRedirect: true,
		Headers:        map[string]string{},
		MaxRedirects:   10,
	}
}

// scraperKeys is the set of option keys that never reach the transport layer.
// Derived from the Options struct tags so the two cannot drift apart.
var scraperKeys = buildScraperKeys()

func buildScraperKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Options{})
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			keys[name] = struct{}{}
		}
	}
	return keys
}

// Setup merges input over the defaults and splits the result into disjoint
// scraper and transport option sets. The caller's top-level map is never
// mutated, but nested maps are shared rather than copied: nil-valued keys
// inside them are pruned in place. An error is only possible when a field
// carries a value of the wrong type; well-formed input cannot fail.
func Setup(input map[string]any) (Options, RequestOptions, error) {
	opts := Defaults()
	reqOpts := DefaultRequestOptions()

	merged := make(map[string]any, len(input))
	for key, value := range input {
		merged[key] = value
	}
	Prune(merged)

	// Nested option objects replace the default wholesale; they are not
	// deep-merged.
	if _, ok := merged["urlValidatorSettings"]; ok {
		opts.URLValidatorSettings = urlutil.ValidatorSettings{}
	}
	if err := decode(merged, &opts); err != nil {
		return Defaults(), DefaultRequestOptions(), fmt.Errorf("options: decode scraper options: %w", err)
	}

	transport := make(map[string]any, len(merged))
	for key, value := range merged {
		if _, scraperOnly := scraperKeys[key]; scraperOnly {
			continue
		}
		transport[key] = value
	}
	if err := decode(transport, &reqOpts); err != nil {
		return Defaults(), DefaultRequestOptions(), fmt.Errorf("options: decode request options: %w", err)
	}

	return opts, reqOpts, nil
}

func decode(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
