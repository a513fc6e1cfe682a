//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/markkurossi/mpcstats/demographics"
	"github.com/spf13/viper"
)

// applyConfig reads the configuration file and sets the flags that
// were not given on the command line. The configuration keys are the
// flag names.
func applyConfig(fs *flag.FlagSet, file string) error {
	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	for _, key := range v.AllKeys() {
		if set[key] {
			continue
		}
		f := fs.Lookup(key)
		if f == nil || key == "config" {
			log.Printf("%s: ignoring unknown key '%s'\n", file, key)
			continue
		}
		if err := f.Value.Set(configValue(v.Get(key))); err != nil {
			return fmt.Errorf("%s: %s: %w", file, key, err)
		}
	}
	return nil
}

func configValue(value interface{}) string {
	switch v := value.(type) {
	case []interface{}:
		var parts []string
		for _, el := range v {
			parts = append(parts, fmt.Sprint(el))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// parseBounds parses the comma-separated histogram bounds.
func parseBounds(value string) ([]uint32, error) {
	var result []uint32
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid bound '%s'",
				demographics.ErrThresholdMisconfiguration, part)
		}
		result = append(result, uint32(v))
	}
	return result, nil
}

// Metric names.
const (
	metricValidate   = "validate"
	metricAverage    = "average"
	metricSequential = "sequential"
	metricVariance   = "variance"
	metricHistogram  = "histogram"
	metricGender     = "gender"
)

// parseMetrics parses the comma-separated metric list. The
// validation is moved first so later metrics use the validated
// datasets.
func parseMetrics(value string) ([]string, error) {
	var validate bool
	var result []string
	seen := make(map[string]bool)

	for _, part := range strings.Split(value, ",") {
		m := strings.ToLower(strings.TrimSpace(part))
		if len(m) == 0 || seen[m] {
			continue
		}
		seen[m] = true
		switch m {
		case metricValidate:
			validate = true
		case metricAverage, metricSequential, metricVariance,
			metricHistogram, metricGender:
			result = append(result, m)
		default:
			return nil, fmt.Errorf("unknown metric '%s'", m)
		}
	}
	if validate {
		result = append([]string{metricValidate}, result...)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no metrics selected")
	}
	return result, nil
}
