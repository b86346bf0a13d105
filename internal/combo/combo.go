package combo

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrxk/combo/internal/logging"
)

// Fetch produces the full item set. It is safe to call off the event loop; it
// captures the configuration that was current when it was created.
type Fetch[T any] func(ctx context.Context) Result[T]

// Result is the outcome of a Fetch, handed to Loaded.
type Result[T any] struct {
	Items []T
	Err   error
	// base is the Options.Items slice current when the Fetch was created.
	base []T
}

// Options configures a Combo.
type Options[T any] struct {
	// Items is used when DataSource is nil. After initialization a change of
	// identity of this slice replaces the item set.
	Items []T
	// DataSource, when set, takes precedence over Items for the initial load.
	DataSource func(ctx context.Context) ([]T, error)
	// Display projects an item to the text shown and matched. When nil the
	// item's String method is used if it has one, otherwise fmt.Sprint.
	Display func(T) string
	// OnItemSelected is called once for every committed selection.
	OnItemSelected func(T)
	// OnError is called when a load fails.
	OnError func(error)
}

// Combo holds the interaction state of a filterable selection control. It is
// not safe for concurrent use; all methods must be called from the host's
// event loop.
type Combo[T any] struct {
	opts         Options[T]
	lastItems    []T
	items        []T
	filtered     []T
	searchText   string
	open         bool
	itemSelected bool
	initialized  bool
	loading      bool
	err          error
	log          *logrus.Entry
}

// New returns a Combo configured with the given Options. No items are loaded
// until Initialize or Mount is called.
func New[T any](opts Options[T]) *Combo[T] {
	return &Combo[T]{
		opts: opts,
		log:  logging.NewLogger("combo"),
	}
}

// SetLogger replaces the logger used by this Combo.
func (c *Combo[T]) SetLogger(log *logrus.Entry) {
	c.log = log
}

// Initialize performs the first-mount load, blocking on the data source. It
// does nothing once the Combo is initialized.
func (c *Combo[T]) Initialize(ctx context.Context) error {
	fetch := c.Mount()
	if fetch == nil {
		return nil
	}
	return c.Loaded(fetch(ctx))
}

// InputsChanged applies new Options, blocking on the data source when a load
// is required.
func (c *Combo[T]) InputsChanged(ctx context.Context, next Options[T]) error {
	fetch := c.SetInputs(next)
	if fetch == nil {
		return nil
	}
	return c.Loaded(fetch(ctx))
}

// Mount returns the Fetch for the first-mount load, or nil when the Combo is
// already initialized or loading. The result of the Fetch must be handed to
// Loaded.
func (c *Combo[T]) Mount() Fetch[T] {
	if c.initialized || c.loading {
		return nil
	}
	return c.fetch()
}

// SetInputs stores the given Options. It returns a Fetch when the Combo is not
// initialized yet and a data source is now present. When the Combo is
// initialized and the items slice changed identity, the item set is replaced
// and the filtered items are reset to the full new set without reapplying the
// search text.
func (c *Combo[T]) SetInputs(next Options[T]) Fetch[T] {
	c.opts = next
	if !c.initialized && next.DataSource != nil {
		return c.fetch()
	}
	if c.initialized && !sameSlice(next.Items, c.lastItems) {
		c.log.WithField("count", len(next.Items)).Debug("items replaced")
		c.lastItems = next.Items
		c.items = slices.Clone(next.Items)
		c.filtered = slices.Clone(c.items)
	}
	return nil
}

// fetch returns a Fetch bound to the current configuration and marks the
// Combo as loading.
func (c *Combo[T]) fetch() Fetch[T] {
	c.loading = true
	source := c.opts.DataSource
	base := c.opts.Items
	return func(ctx context.Context) Result[T] {
		if source == nil {
			return Result[T]{Items: base, base: base}
		}
		items, err := source(ctx)
		return Result[T]{Items: items, Err: err, base: base}
	}
}

// Loaded completes a load started by Mount or SetInputs. On success the item
// set is replaced, the filtered items are reset to the full set and the
// Combo becomes initialized. On failure the Combo stays uninitialized so the
// next SetInputs with a data source retries, and the error is returned,
// recorded and passed to OnError. Items set through SetInputs while the load
// was in flight are applied by the next SetInputs.
func (c *Combo[T]) Loaded(res Result[T]) error {
	c.loading = false
	items, err := res.Items, res.Err
	if err != nil {
		c.err = fmt.Errorf("load items: %w", err)
		c.log.WithError(err).Warn("load failed")
		if c.opts.OnError != nil {
			c.opts.OnError(c.err)
		}
		return c.err
	}
	c.err = nil
	c.initialized = true
	c.lastItems = res.base
	c.items = slices.Clone(items)
	c.filtered = slices.Clone(c.items)
	c.log.WithField("count", len(items)).Debug("items loaded")
	return nil
}

// FilterItems recomputes the filtered items. When text is given it becomes
// the search text; with no argument the current search text is reapplied.
// An empty search text shows every item, otherwise items whose display value
// contains the search text, ignoring case, are kept in their original order.
func (c *Combo[T]) FilterItems(text ...string) {
	if len(text) > 0 {
		c.searchText = text[0]
	}
	if c.searchText == "" {
		c.filtered = slices.Clone(c.items)
		return
	}
	filtered := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if indexFold(c.DisplayValue(item), c.searchText) >= 0 {
			filtered = append(filtered, item)
		}
	}
	c.filtered = filtered
}

// SelectItem commits item as the selection: the search text becomes its
// display value, OnItemSelected is called, the filter is reapplied and the
// dropdown closes. OnItemSelected is called synchronously; hosts that need
// fire-and-forget delivery dispatch from inside the callback.
func (c *Combo[T]) SelectItem(item T) {
	c.searchText = c.DisplayValue(item)
	c.itemSelected = true
	c.log.WithField("item", c.searchText).Debug("item selected")
	if c.opts.OnItemSelected != nil {
		c.opts.OnItemSelected(item)
	}
	c.FilterItems()
	c.CloseDropdown()
}

// HandleFocusOut resolves the selection when focus leaves the control. If no
// item was selected explicitly, a single remaining item is committed, or,
// with several remaining items, the only one whose display value equals the
// search text ignoring case. The selection flag is then reset and the dropdown
// closes.
func (c *Combo[T]) HandleFocusOut() {
	if !c.itemSelected {
		switch {
		case len(c.filtered) == 1:
			c.SelectItem(c.filtered[0])
		case len(c.filtered) > 1:
			if item, ok := c.exactMatch(); ok {
				c.SelectItem(item)
			}
		}
	}
	c.itemSelected = false
	c.CloseDropdown()
}

// exactMatch returns the filtered item whose display value equals the search
// text, ignoring case. It reports false when no item or more than one item
// matches.
func (c *Combo[T]) exactMatch() (T, bool) {
	var match T
	found := 0
	for _, item := range c.filtered {
		if strings.EqualFold(c.DisplayValue(item), c.searchText) {
			match = item
			found++
		}
	}
	if found != 1 {
		var zero T
		return zero, false
	}
	return match, true
}

// OpenDropdown shows the dropdown. It does nothing until the Combo is
// initialized.
func (c *Combo[T]) OpenDropdown() {
	if !c.initialized {
		return
	}
	c.open = true
}

// CloseDropdown hides the dropdown.
func (c *Combo[T]) CloseDropdown() {
	c.open = false
}

// DisplayValue returns the text shown for item.
func (c *Combo[T]) DisplayValue(item T) string {
	if c.opts.Display != nil {
		return c.opts.Display(item)
	}
	if s, ok := any(item).(fmt.Stringer); ok {
		if isNil(s) {
			return ""
		}
		return s.String()
	}
	return fmt.Sprint(item)
}

// SearchText returns the current text of the input.
func (c *Combo[T]) SearchText() string {
	return c.searchText
}

// Items returns a copy of the full item set.
func (c *Combo[T]) Items() []T {
	return slices.Clone(c.items)
}

// FilteredItems returns a copy of the items matching the search text.
func (c *Combo[T]) FilteredItems() []T {
	return slices.Clone(c.filtered)
}

// IsOpen reports whether the dropdown is shown.
func (c *Combo[T]) IsOpen() bool {
	return c.open
}

// IsItemSelected reports whether an item was committed since the last focus
// loss.
func (c *Combo[T]) IsItemSelected() bool {
	return c.itemSelected
}

// IsInitialized reports whether the first load completed.
func (c *Combo[T]) IsInitialized() bool {
	return c.initialized
}

// Loading reports whether a load is in flight.
func (c *Combo[T]) Loading() bool {
	return c.loading
}

// Err returns the error of the last failed load, or nil.
func (c *Combo[T]) Err() error {
	return c.err
}

// sameSlice reports whether a and b are the same slice: same length and same
// backing array. Contents are not compared.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}

// isNil reports whether v holds a nil pointer, map, slice, func, chan or
// interface.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
