// This file is part of GopherCell.
//
// GopherCell is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherCell is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherCell.  If not, see <https://www.gnu.org/licenses/>.

package preferences

import (
	"fmt"
	"time"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/prefs"
	"github.com/jetsetilly/gophercell/resources"
)

// InvalidValue is returned when a preference is set to a value outside of the
// allowed set.
const InvalidValue = "preferences: %s: invalid value %q"

// List of backend names accepted by the spu.backend preference.
const (
	BackendInterpreter = "interpreter"
	BackendTranslator  = "translator"
)

// List of compression names accepted by the dump.compression preference.
const (
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
	CompressionXZ   = "xz"
	CompressionNone = "none"
)

// Preferences defines and collates all the preference values used by the
// machine.
type Preferences struct {
	dsk *prefs.Disk

	// the execution backend bound to new cores
	Backend prefs.String

	// frequency of the decrementer in MHz
	Timebase prefs.Float

	// the maximum number of instructions the translator keeps compiled for a
	// single local store
	CodeCacheBudget prefs.Int

	// the maximum number of instructions in a translated block
	BlockLimit prefs.Int

	// number of passes without progress the coordinator makes before it
	// starts sleeping
	Recheck prefs.Int

	// sleep interval of an idle coordinator in microseconds
	Sleep prefs.Int

	// compression used for dump files
	Compression prefs.String

	// directory for dump files. relative to the resources path if not absolute
	DumpDirectory prefs.String
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the Preferences
// type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.Backend.SetHookPre(oneOf("spu.backend", BackendInterpreter, BackendTranslator))
	p.Compression.SetHookPre(oneOf("dump.compression", CompressionZstd, CompressionLZ4, CompressionXZ, CompressionNone))
	p.Timebase.SetHookPre(func(v prefs.Value) error {
		if f, ok := v.(float64); ok && f <= 0 {
			return curated.Errorf(InvalidValue, "spu.timebase", fmt.Sprint(v))
		}
		return nil
	})

	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}

	p.dsk, err = prefs.NewDisk(resources.Fs, pth)
	if err != nil {
		return nil, err
	}

	for key, v := range map[string]prefsValue{
		"spu.backend":         &p.Backend,
		"spu.timebase":        &p.Timebase,
		"spu.codeCacheBudget": &p.CodeCacheBudget,
		"spu.blockLimit":      &p.BlockLimit,
		"coordinator.recheck": &p.Recheck,
		"coordinator.sleep":   &p.Sleep,
		"dump.compression":    &p.Compression,
		"dump.directory":      &p.DumpDirectory,
	} {
		if err := p.dsk.Add(key, v); err != nil {
			return nil, err
		}
	}

	if err := p.dsk.Load(true); err != nil {
		return nil, err
	}

	return p, nil
}

// the interface satisfied by every prefs type. prefs does not export it
type prefsValue interface {
	fmt.Stringer
	Set(prefs.Value) error
	Get() prefs.Value
	Reset() error
}

func oneOf(key string, allowed ...string) func(prefs.Value) error {
	return func(v prefs.Value) error {
		s := fmt.Sprint(v)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return curated.Errorf(InvalidValue, key, s)
	}
}

// SetDefaults reverts all preferences to the default values.
func (p *Preferences) SetDefaults() {
	_ = p.Backend.Set(BackendTranslator)
	_ = p.Timebase.Set(79.8)
	_ = p.CodeCacheBudget.Set(1 << 16)
	_ = p.BlockLimit.Set(256)
	_ = p.Recheck.Set(64)
	_ = p.Sleep.Set(100)
	_ = p.Compression.Set(CompressionZstd)
	_ = p.DumpDirectory.Set("dumps")
}

// Reset all preferences to the default values. Unlike Disk.Reset() the values
// are not zeroed.
func (p *Preferences) Reset() error {
	p.SetDefaults()
	return nil
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// SleepInterval returns the coordinator.sleep preference as a duration.
func (p *Preferences) SleepInterval() time.Duration {
	return time.Duration(p.Sleep.Get().(int)) * time.Microsecond
}

// BackendName returns the spu.backend preference.
func (p *Preferences) BackendName() string {
	return p.Backend.String()
}
