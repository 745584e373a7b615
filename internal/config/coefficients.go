package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/brand-estimator/internal/estimate"
	"gopkg.in/yaml.v3"
)

// LoadCoefficients reads a YAML coefficient file over the stock table.
// Keys missing from the file keep their default values. An empty path returns the defaults.
func LoadCoefficients(path string) (estimate.Coefficients, error) {
	coeffs := estimate.DefaultCoefficients()
	if path == "" {
		return coeffs, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return estimate.Coefficients{}, fmt.Errorf("failed to read coefficients file: %w", err)
	}
	if err := ParseCoefficients(raw, &coeffs); err != nil {
		return estimate.Coefficients{}, fmt.Errorf("%s: %w", path, err)
	}

	logrus.WithField("path", path).Info("Loaded projection coefficients")
	return coeffs, nil
}

// ParseCoefficients decodes YAML into coeffs, rejecting unknown keys, then validates the result
func ParseCoefficients(raw []byte, coeffs *estimate.Coefficients) error {
	if len(raw) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(coeffs); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse coefficients: %w", err)
		}
	}
	if err := coeffs.Validate(); err != nil {
		return fmt.Errorf("invalid coefficients: %w", err)
	}
	return nil
}
