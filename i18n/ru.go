package i18n

var RU = Messages{
	"syntax_error":  "Синтаксическая ошибка",
	"missing_node":  "Не хватает %s",
	"stale_tree":    "Синтаксическое дерево отстаёт от текста",
	"node_in":       "**%s** в `%s`",
	"call_function": "Вызвать эту функцию: %s",
}
