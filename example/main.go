package main

import (
	"context"
	"fmt"

	db "github.com/TechXTT/LiteRM"
	"github.com/TechXTT/LiteRM/internal/logging"
	"github.com/TechXTT/LiteRM/pkg/config"
)

type Book struct {
	BookID *int64 `db:"bookID"`
	Title  string
	Author string
	Pages  int64
	Tags   []string
}

func main() {
	ctx := context.Background()

	// 1) Load LITERM_* settings from .env and the environment
	cfg, err := config.Load("")
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	// 2) Open the database file
	books := db.Open(cfg.Database)
	if err := books.Err(); err != nil {
		panic(fmt.Errorf("open: %w", err))
	}
	defer books.Close()

	// 3) Create the table and its join table on first run
	if _, err := books.AutoCreateTableContext(ctx, Book{}); err != nil {
		panic(fmt.Errorf("create table: %w", err))
	}

	// 4) Insert a row; the engine assigns the identity
	_, id, err := books.CreateContext(ctx, Book{Title: "Dune", Author: "Herbert", Pages: 412})
	if err != nil {
		panic(fmt.Errorf("create: %w", err))
	}
	fmt.Println("✅ Created book", id)

	// 5) Upsert by title: updates the row above
	if _, err := books.UpsertContext(ctx, Book{Title: "Dune", Author: "Frank Herbert", Pages: 412}, "Title"); err != nil {
		panic(fmt.Errorf("upsert: %w", err))
	}

	// 6) Read it back into a struct
	rs, err := books.FindContext(ctx, Book{BookID: &id}, "bookID")
	if err != nil {
		panic(fmt.Errorf("find: %w", err))
	}
	var b Book
	if err := rs.Decode(0, &b); err != nil {
		panic(fmt.Errorf("decode: %w", err))
	}
	fmt.Printf("%d: %s by %s, %d pages\n", *b.BookID, b.Title, b.Author, b.Pages)
}
