// Package signature defines the signature value shared by renderers, exporters
// and handlers, together with the link and filename helpers every template
// applies identically.
//
// Data is deliberately permissive. Renderers accept any Data, including empty
// name and role; Validate is only called on the form path.
package signature
