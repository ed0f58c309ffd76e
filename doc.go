// Package dracor is a Go client for the DraCor (Drama Corpora) API.
//
// It wraps the REST and SPARQL endpoints of https://dracor.org, normalizes
// the API's camelCase payload keys to segmented snake_case, and evaluates
// field-path filters over a corpus's plays.
//
//	client, _ := dracor.New(ctx, dracor.WithMemoryCache())
//	defer client.Close()
//
//	ids, err := client.Corpus("rus").Filter(ctx, dracor.Conditions{
//	    "written_year__eq":        1913,
//	    "network_size__lt":        20,
//	    "authors__name__contains": "Andreyev",
//	})
//
// Conditions are named <field-path>__<operator>. Operators are eq, ne, gt, ge,
// lt, le, contains, icontains, exact, iexact and in. Ordering operators compare
// the string forms of values. A field path of two segments over a list field
// (authors__name) joins the sub-field across all list elements with " && ".
//
// The same engine runs over caller-supplied records with Filter.
package dracor
