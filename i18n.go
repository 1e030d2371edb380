// Package i18n provides translation catalog management for web
// applications: extraction of translatable strings from source, PO/MO
// catalog storage, validation, coverage reporting, tiered lookup
// caching, and health monitoring.
//
// Basic usage:
//
//	import (
//	    "context"
//	    i18n "github.com/pilipandr770/sekretar-sub006"
//	)
//
//	func main() {
//	    svc, err := i18n.New("./translations",
//	        i18n.WithLocales("en", "de", "uk"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer svc.Close()
//
//	    // Resolve a message; never fails, falls back to the key itself.
//	    fmt.Println(svc.Translate(context.Background(), "de", "Save"))
//	}
package i18n
