// Package option holds the typed bootstrap options.
//
// Options form a closed set: every key is declared once, at package
// initialization, through Declare. A key carries a group, a name, a value
// type and a default. A Store then records explicit values for a single
// bootstrap run:
//
//   - writes are type checked against the declared type;
//   - writes for keys that were never declared fail with a precondition error;
//   - once the store is frozen (at container creation) writes fail with a
//     state error;
//   - reads fall back to the declared default and mark the key as used, so a
//     diagnostic report can tell which options actually influenced startup.
//
// Values can also be supplied as strings (configuration files, environment
// variables) through the Store's mapping helpers, which parse the string
// according to the key's type.
package option
