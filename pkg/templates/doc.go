// Package templates holds the signature templates and the registry that
// orders them.
//
// Every Template has two producers fed by the same signature.Data. Render
// returns a templ.Component for the live preview; HTML returns a static
// table-based fragment that survives email clients. Both producers apply the
// same visibility rules, so a field shown in one is shown in the other.
//
//	reg := templates.Builtin()
//	html := reg.ExportHTML("banner", data)
package templates
