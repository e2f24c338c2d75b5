package i18n

var EN = Messages{
	"syntax_error":  "Syntax error",
	"missing_node":  "Missing %s",
	"stale_tree":    "The syntax tree is behind the text",
	"node_in":       "**%s** in `%s`",
	"call_function": "Call this function: %s",
}
