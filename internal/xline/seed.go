package xline

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// seedRecord is the on-disk shape of one seed ban entry, loaded from the
// TOML file named by config.Config.BanSeed.
type seedRecord struct {
	Kind       string `toml:"kind"`
	Mask       string `toml:"mask"`
	Reason     string `toml:"reason"`
	SetBy      string `toml:"set_by"`
	ExpiresInS int64  `toml:"expires_in_seconds"` // 0 = permanent
}

type seedFile struct {
	Bans []seedRecord `toml:"ban"`
}

// LoadSeed reads a TOML ban-seed file and adds every record to s. Unlike
// runtime XLine commands, a seed file load is meant to run once at
// startup, before the socket engine accepts any connection.
func LoadSeed(s *Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "error reading ban seed %q", path)
	}

	var f seedFile
	if _, err := toml.Decode(string(raw), &f); err != nil {
		return errors.Wrapf(err, "error parsing ban seed %q", path)
	}

	now := time.Now()
	for _, rec := range f.Bans {
		line := &Line{
			Kind:   Kind(rec.Kind),
			Mask:   rec.Mask,
			Reason: rec.Reason,
			SetBy:  rec.SetBy,
			SetAt:  now,
		}
		if rec.ExpiresInS > 0 {
			line.Expires = now.Add(time.Duration(rec.ExpiresInS) * time.Second)
		}
		s.Add(line)
	}

	return nil
}
