// Package modtl translates the human-readable strings of localization files
// in place.
//
// A content processor parses a file into a Document and enumerates its leaf
// strings. Each leaf goes through a Policy, which skips blank or excluded
// strings, consults a translation memory and only then calls the Provider.
// The processor writes the document back with structure, whitespace and
// non-text data untouched.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/modtl"
//	    "github.com/ZaguanLabs/modtl/cache"
//	    "github.com/ZaguanLabs/modtl/processor"
//	    "github.com/ZaguanLabs/modtl/provider"
//	)
//
//	func main() {
//	    p := provider.NewDeepLProvider(provider.DeepLConfig{
//	        APIKey: os.Getenv("DEEPL_API_KEY"),
//	    })
//
//	    tm, err := cache.NewSQLiteCache(cache.DefaultPath, cache.Namespace("EN", "JA"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer tm.Close()
//
//	    policy := modtl.NewPolicy(p, "EN", "JA", modtl.WithCache(tm))
//
//	    doc, err := processor.Load(processor.NewJSONProcessor(), "en.json")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for pos, text := range doc.Leaves() {
//	        if res := policy.Resolve(context.Background(), text); res.Err == nil {
//	            doc.Replace(pos, res.Text)
//	        }
//	    }
//	    processor.Save(processor.NewJSONProcessor(), doc, "en.json")
//	}
package modtl
