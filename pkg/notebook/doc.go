// Package notebook assembles the notes index, note reader, and search engine
// into one handle shared by the MCP server and the CLI.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Notebook                          │
//	│  ┌──────────────┐   ┌──────────────┐   ┌──────────────┐  │
//	│  │ index.Index  │◄──│ notes.Reader │◄──│search.Engine │  │
//	│  │ sources,ids  │   │ LRU content  │   │ rg→memory    │  │
//	│  └──────────────┘   └──────────────┘   └──────────────┘  │
//	└──────────────────────────────────────────────────────────┘
//
// # Usage
//
//	nb := notebook.New(cfg)
//	if err := nb.Setup(ctx, cfg.Sources, nil); err != nil {
//	    return err
//	}
//	results, err := nb.Search(ctx, "meeting", 10, 2)
//
// # Thread Safety
//
// Setup, AddSource, and Scan take an exclusive lock; queries take a shared
// lock. A search therefore never observes a partially rebuilt index.
package notebook
