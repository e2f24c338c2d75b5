package i18n

var UK = Messages{
	"syntax_error":  "Синтаксична помилка",
	"missing_node":  "Бракує %s",
	"stale_tree":    "Синтаксичне дерево відстає від тексту",
	"node_in":       "**%s** у `%s`",
	"call_function": "Викликати цю функцію: %s",
}
