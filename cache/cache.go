/*
Package cache implements the on-device icon cache.

Icons are stored one per file as icons/<code>.bin and are loaded lazily the
first time their code is requested. Once loaded an icon is kept for the
lifetime of the cache; there is no eviction or refresh as the set of codes
is small and fixed.

A Cache is meant to be owned by the display loop and is not safe for
concurrent use.
*/
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"io/ioutil"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/bodgit/lvimg/image"
)

const (
	// Dir is the directory, relative to the filesystem root, that holds
	// the icon records.
	Dir = "icons"

	// Ext is the file extension of an icon record.
	Ext = ".bin"

	// DefaultCapacity is the number of icons a Cache created with New
	// can hold.
	DefaultCapacity = 32
)

var (
	// ErrNotFound is returned when there is no record for an icon code.
	ErrNotFound = errors.New("cache: icon not found")
	// ErrInvalidCode is returned for codes that can't name a file.
	ErrInvalidCode = errors.New("cache: invalid icon code")
	// ErrCacheFull is returned when loading a new code would exceed the
	// capacity of the cache.
	ErrCacheFull = errors.New("cache: capacity exceeded")
)

// Path returns the record path for an icon code.
func Path(code string) string {
	return path.Join(Dir, code+Ext)
}

func validCode(code string) bool {
	return code != "" && code != "." && code != ".." && !strings.ContainsAny(code, `/\`)
}

// Cache maps icon codes to decoded descriptors.
type Cache struct {
	fsys     fs.FS
	capacity int
	logger   *log.Logger
	icons    map[string]*image.Descriptor
}

// New returns an empty Cache reading records from fsys with the default
// capacity.
func New(fsys fs.FS, logger *log.Logger) *Cache {
	return NewWithCapacity(fsys, DefaultCapacity, logger)
}

// NewWithCapacity returns an empty Cache that holds at most capacity
// icons.
func NewWithCapacity(fsys fs.FS, capacity int, logger *log.Logger) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Cache{
		fsys:     fsys,
		capacity: capacity,
		logger:   logger,
		icons:    make(map[string]*image.Descriptor, capacity),
	}
}

// Load returns the descriptor for code, reading and decoding its record on
// first use. On any failure nothing is added to the cache and the error
// says why.
func (c *Cache) Load(code string) (*image.Descriptor, error) {
	if d, ok := c.icons[code]; ok {
		return d, nil
	}

	if !validCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	if len(c.icons) >= c.capacity {
		return nil, fmt.Errorf("%w: %d icons loaded, cannot add %q", ErrCacheFull, len(c.icons), code)
	}

	file := Path(code)
	b, err := fs.ReadFile(c.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
		}
		return nil, err
	}

	d, err := image.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	c.icons[code] = d

	return d, nil
}

// Get returns the descriptor for code and whether it is available. Load
// failures are logged and otherwise ignored so the caller can keep showing
// whatever it had before.
func (c *Cache) Get(code string) (*image.Descriptor, bool) {
	d, err := c.Load(code)
	if err != nil {
		c.logger.Printf("Icon \"%s\" not available: %v\n", code, err)
		return nil, false
	}
	return d, true
}

// Len returns the number of loaded icons.
func (c *Cache) Len() int {
	return len(c.icons)
}

// Codes returns the loaded icon codes in sorted order.
func (c *Cache) Codes() []string {
	codes := make([]string, 0, len(c.icons))
	for code := range c.icons {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
