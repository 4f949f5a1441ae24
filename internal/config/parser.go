package config

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			continue
		}

		// Parse Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove quotes if present
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		switch currentSection {
		case "":
			if err := setRootField(cfg, key, value); err != nil {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
		case "notify":
			if err := setNotifyField(&cfg.Notify, key, value); err != nil {
				return nil, fmt.Errorf("error in section [notify]: %w", err)
			}
		case "palette":
			col, err := parseColor(value)
			if err != nil {
				return nil, fmt.Errorf("error in section [palette]: invalid color for key %s: %w", key, err)
			}
			cfg.Palette[key] = col
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "save_dir":
		cfg.SaveDir = value
	case "default_color":
		cfg.DefaultColor = value
	case "default_width":
		w, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		cfg.DefaultWidth = w
	case "text_size":
		s, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
		cfg.TextSize = s
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

// parseColor parses a hex color string of the form #RRGGBB or #RRGGBBAA.
func parseColor(s string) (color.RGBA, error) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	} else if len(hex) == 8 {
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 24),
			G: uint8((val >> 16) & 0xFF),
			B: uint8((val >> 8) & 0xFF),
			A: uint8(val & 0xFF),
		}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}
