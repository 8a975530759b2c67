package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"library-catalog/library"
)

const defaultManifest = "catalog.json"

// manifest describes branches and the items shelved in them.
type manifest struct {
	Branches []struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	} `json:"branches"`
	Items []manifestItem `json:"items"`
}

type manifestItem struct {
	Kind          string  `json:"kind"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	CatalogNumber string  `json:"catalog_number"`
	Category      string  `json:"category"`
	FileSizeMB    float64 `json:"file_size_mb"`
	Branch        string  `json:"branch"`
}

func main() {
	path := defaultManifest
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening manifest: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	m, err := decodeManifest(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading manifest: %v\n", err)
		os.Exit(1)
	}

	manager, err := library.NewLibraryManager(library.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating library: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	fmt.Printf("Importing catalog from %s...\n", path)
	successCount, errorCount := importManifest(os.Stdout, manager, m)

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d items\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nImported items:")
		printItems(os.Stdout, manager)
	}
}

func decodeManifest(r io.Reader) (*manifest, error) {
	var m manifest
	if err := jsoniter.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// importManifest registers every branch, then every item, shelving each item
// in its named branch. Items with an unknown kind or branch are skipped and
// counted as errors.
func importManifest(w io.Writer, mgr *library.LibraryManager, m *manifest) (successCount, errorCount int) {
	for _, b := range m.Branches {
		mgr.AddBranch(b.Name, b.Location)
	}

	for _, it := range m.Items {
		fmt.Fprintf(w, "Importing: %s by %s... ", it.Title, it.Author)

		kind, err := library.ParseItemKind(it.Kind)
		if err != nil {
			fmt.Fprintf(w, "ERROR - %v\n", err)
			errorCount++
			continue
		}

		branch := mgr.Catalog().Branch(it.Branch)
		if it.Branch != "" && branch == nil {
			fmt.Fprintf(w, "ERROR - unknown branch %q\n", it.Branch)
			errorCount++
			continue
		}

		var item library.Item
		switch kind {
		case library.KindElectronicBook:
			item = mgr.AddElectronicBook(it.Title, it.Author, it.CatalogNumber, it.Category, it.FileSizeMB)
		default:
			item = mgr.AddPhysicalBook(it.Title, it.Author, it.CatalogNumber, it.Category)
		}
		if branch != nil {
			mgr.PlaceItem(item, branch)
		}

		fmt.Fprintf(w, "SUCCESS (%s)\n", kind)
		successCount++
	}
	return successCount, errorCount
}

func printItems(w io.Writer, mgr *library.LibraryManager) {
	fmt.Fprintf(w, "%-6s %-40s %-25s %-15s\n", "Kind", "Title", "Author", "Catalog No.")
	fmt.Fprintln(w, strings.Repeat("-", 89))
	for _, item := range mgr.Catalog().Items() {
		fmt.Fprintf(w, "%-6s %-40s %-25s %-15s\n", item.Kind(), truncateString(item.Title(), 40), truncateString(item.Author(), 25), item.CatalogNumber())
	}
	fmt.Fprintf(w, "\nTotal items in the library: %d\n", mgr.TotalItems())
}

// truncateString shortens s to at most maxLen runes.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
