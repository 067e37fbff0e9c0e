package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the parameters of a simulation run.
type Config struct {
	FreqMHz       float64
	BytesPerCycle uint32
	Version       uint32
	Channels      int
	Elements      uint32
	TracePath     string
	MonitorPort   int
}

func defaultConfig() Config {
	return Config{
		FreqMHz:       100,
		BytesPerCycle: 4,
		Version:       1,
		Channels:      2,
		Elements:      256,
	}
}

// loadConfig reads the defaults, then the env files, then the environment.
// Missing env files are skipped. Variables already in the environment win
// over the files.
func loadConfig(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	c := defaultConfig()

	var errs []error
	errs = append(errs,
		lookupFloat("LMDMASIM_FREQ_MHZ", &c.FreqMHz),
		lookupUint("LMDMASIM_BYTES_PER_CYCLE", &c.BytesPerCycle),
		lookupUint("LMDMASIM_VERSION", &c.Version),
		lookupInt("LMDMASIM_CHANNELS", &c.Channels),
		lookupUint("LMDMASIM_ELEMENTS", &c.Elements),
		lookupInt("LMDMASIM_MONITOR_PORT", &c.MonitorPort),
	)

	if v, ok := os.LookupEnv("LMDMASIM_TRACE"); ok {
		c.TracePath = v
	}

	return c, errors.Join(errs...)
}

func lookupFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*dst = f

	return nil
}

func lookupUint(key string, dst *uint32) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*dst = uint32(n)

	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*dst = n

	return nil
}
