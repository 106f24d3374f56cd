// Package loader reads and writes node trees as YAML, JSON and TOML.
//
// # Usage
//
//	root, err := loader.ReadFile("config.yaml")
//	...
//	d, err := loader.Encode(root, loader.JSON, loader.WithIndent(4))
//
// YAML head and line comments become node comments and are written back
// as head comments. JSON keeps the order of object keys; TOML tables come
// out sorted. Dates and times read from TOML become RFC 3339 text.
//
// Null values inside lists and maps are dropped on read: a tree holds no
// null children.
package loader
