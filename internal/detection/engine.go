package detection

import (
	"fmt"
	"github.com/mcpnotes/mcpnotes/internal/mcp"
	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

type Result struct {
	Description string
}

type Engine struct {
	detector *detect.Detector
}

// NewEngine creates a detection engine with gitleaks initialized from
// the TOML ruleset at rulesPath.
func NewEngine(rulesPath string) (*Engine, error) {
	// Setup viper to read the config file
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(rulesPath)

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Parse into gitleaks config format
	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Translate to GitLeaks config
	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate config: %w", err)
	}

	// Create the detector with the parsed config
	detector := detect.NewDetector(cfg)

	return &Engine{
		detector: detector,
	}, nil
}

// Detect scans every string argument of a tools/call request and
// returns a finding per leaked secret.
func (e *Engine) Detect(request mcp.Request) []Result {
	var results []Result

	for _, arg := range request.Params.Arguments {
		if argStr, ok := arg.(string); ok {
			detectResult := e.detector.DetectString(argStr)
			for _, res := range detectResult {
				results = append(results, Result{
					Description: res.Description,
				})
			}
		}
	}
	return results
}
