// Package testutil provides the fixture entities, rows and recorders shared
// by tests across packages.
//
// The "entities" fixture exercises every rule shape: bare names, aliases,
// case-insensitive value options, ranges with default and custom bound keys,
// filter-level rules on a field the entity map already constrains, and a
// threshold extension (price_less_than). "comments" uses custom range keys
// and an identity extension. "widgets" has no configuration at all.
package testutil
