package testutil

import (
	"time"

	"github.com/roach88/syto/internal/attrmap"
	"github.com/roach88/syto/internal/engine"
	"github.com/roach88/syto/internal/queryir"
	"github.com/roach88/syto/internal/schema"
)

// EntityColumns returns the column types of the entities table.
func EntityColumns() schema.Columns {
	return schema.Columns{
		"name":          schema.Text,
		"color":         schema.Text,
		"weight":        schema.Integer,
		"price":         schema.Integer,
		"rate":          schema.Real,
		"size_x":        schema.Integer,
		"size_y":        schema.Integer,
		"model_number":  schema.Text,
		"serial_number": schema.Text,
		"created_at":    schema.Timestamp,
	}
}

// Entities returns the "Entity" fixture over the entities table.
//
// Entity-level rules:
//
//	serial_number                         equality
//	model      → entities.model_number    equality
//	full_name  → name                     value, case-insensitive
//	width      → entities.size_x          value, case-insensitive
//	height     → entities.size_y          range (height_from..height_to)
//
// Filter-level rules:
//
//	name                                  equality
//	color                                 value, case-insensitive
//	wgt        → weight                   range (wgt_from..wgt_to)
//	date       → created_at               range (date_from..date_to)
//	rate                                  range (rate_from..rate_to)
//
// Extension: price_less_than → price < value.
func Entities() *engine.Entity {
	cols := EntityColumns()
	return &engine.Entity{
		Name:    "Entity",
		Table:   "entities",
		Columns: cols,
		Attrs: attrmap.MustBuild(
			attrmap.Name("serial_number"),
			attrmap.Alias("model", "entities.model_number"),
			attrmap.Options("full_name", attrmap.Opts{Field: "name", CaseInsensitive: true}),
			attrmap.Options("width", attrmap.Opts{Field: "entities.size_x", CaseInsensitive: true}),
			attrmap.Options("height", attrmap.Opts{Field: "entities.size_y", Type: attrmap.TypeRange}),
		),
		Filter: &engine.Filter{
			Name: "EntityFilter",
			Attrs: attrmap.MustBuild(
				attrmap.Name("name"),
				attrmap.Options("color", attrmap.Opts{CaseInsensitive: true}),
				attrmap.Options("wgt", attrmap.Opts{Field: "weight", Type: attrmap.TypeRange, KeyFrom: "wgt_from", KeyTo: "wgt_to"}),
				attrmap.Options("date", attrmap.Opts{Field: "created_at", Type: attrmap.TypeRange}),
				attrmap.Options("rate", attrmap.Opts{Type: attrmap.TypeRange}),
			),
			Extension: engine.Thresholds{
				Rules: []engine.Threshold{
					{Param: "price_less_than", Field: "price", Op: queryir.OpLt},
				},
				Columns: cols,
			},
		},
	}
}

// CommentColumns returns the column types of the comments table.
func CommentColumns() schema.Columns {
	return schema.Columns{
		"user_id":    schema.Integer,
		"body":       schema.Text,
		"created_at": schema.Timestamp,
	}
}

// Comments returns the "Comment" fixture. It has no entity-level rules; its
// filter maps author to user_id and reads the date range from start_date and
// end_date. The extension is the identity hook.
func Comments() *engine.Entity {
	return &engine.Entity{
		Name:    "Comment",
		Table:   "comments",
		Columns: CommentColumns(),
		Filter: &engine.Filter{
			Name: "CommentFilter",
			Attrs: attrmap.MustBuild(
				attrmap.Alias("author", "user_id"),
				attrmap.Options("date", attrmap.Opts{
					Field:   "created_at",
					Type:    attrmap.TypeRange,
					KeyFrom: "start_date",
					KeyTo:   "end_date",
				}),
			),
			Extension: engine.NoExtension,
		},
	}
}

// Unconfigured returns an entity with no rules and no extension.
func Unconfigured() *engine.Entity {
	return &engine.Entity{Name: "Widget", Table: "widgets"}
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// EntityRows returns the rows seeded into the entities table, in id order.
func EntityRows() []map[string]any {
	return []map[string]any{
		{
			"name": "Alpha", "color": "Green", "weight": 100, "price": 30, "rate": 0.5,
			"size_x": 10, "size_y": 20, "model_number": "118d", "serial_number": "34294WA",
			"created_at": Date(2021, time.January, 1),
		},
		{
			"name": "Beta", "color": "green", "weight": 150, "price": 40, "rate": 0.6,
			"size_x": 12, "size_y": 25, "model_number": "320i", "serial_number": "77120QX",
			"created_at": Date(2021, time.June, 15),
		},
		{
			"name": "Gamma", "color": "Red", "weight": 200, "price": 38, "rate": 0.7,
			"size_x": 15, "size_y": 30, "model_number": "118d", "serial_number": "55555AA",
			"created_at": Date(2022, time.November, 22),
		},
		{
			"name": "Delta", "color": "GREEN", "weight": 250, "price": 20, "rate": 0.9,
			"size_x": 8, "size_y": 40, "model_number": "M3", "serial_number": "90001ZZ",
			"created_at": Date(2023, time.March, 1),
		},
	}
}

// CommentRows returns the rows seeded into the comments table, in id order.
func CommentRows() []map[string]any {
	return []map[string]any{
		{"user_id": 1, "body": "first", "created_at": Date(2022, time.January, 10)},
		{"user_id": 2, "body": "second", "created_at": Date(2022, time.February, 20)},
		{"user_id": 1, "body": "third", "created_at": Date(2022, time.March, 30)},
	}
}
