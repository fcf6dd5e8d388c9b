// Package unitfile decodes unit files: the declarations of one header as a
// TOML, YAML or JSON document, so translation can run without an in-process
// C front end.
//
//	name = "api"
//
//	[[macros]]
//	name = "VERSION"
//	body = "0x0102"
//
//	[[types]]
//	kind = "struct"
//	tag = "node"
//	fields = [{ name = "next", type = "struct node*" }]
//
//	[[decls]]
//	kind = "func"
//	name = "list_len"
//	returns = "int"
//	params = ["struct node*"]
//
// Type spellings are a base name (builtin, typedef or tag) followed by "*"
// and "[N]" suffixes.
package unitfile
