// Package internaldefs holds the shared metric name table used by the
// exporter packages. It is not intended for direct use.
package internaldefs
