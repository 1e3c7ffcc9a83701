package sweep

import (
	"strconv"
	"strings"
)

type phpBackend struct{}

func (phpBackend) filters() *FilterRegistry { return phpFilters }

func (phpBackend) variable(name string) string {
	if isIdentifier(name) {
		return "$" + name
	}
	return "${" + phpQuote(name) + "}"
}

func (b phpBackend) item(name string) string { return b.variable(name) }

func (phpBackend) intIndex(value, key string) string {
	return value + "[" + key + "]"
}

func (phpBackend) strIndex(value, key string) string {
	return value + "[" + phpQuote(key) + "]"
}

func (phpBackend) attr(value, name string) string {
	if isIdentifier(name) {
		return value + "->" + name
	}
	return value + "->{" + phpQuote(name) + "}"
}

func (phpBackend) call(fn, arg string) string { return fn + "(" + arg + ")" }

func (phpBackend) empty() string { return "''" }

func (phpBackend) counter(depth int) string {
	if depth <= 1 {
		return "$loop_index"
	}
	return "$loop_index_" + strconv.Itoa(depth)
}

func (phpBackend) loopIndex(counter string) string  { return "(" + counter + "+1)" }
func (phpBackend) loopIndex0(counter string) string { return "(" + counter + ")" }

func (phpBackend) newWriter(prelude bool) writer { return phpWriter{prelude: prelude} }

// phpQuote returns s as a single-quoted PHP string literal.
func phpQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

type phpWriter struct {
	prelude bool
}

func (w phpWriter) begin() string {
	if w.prelude {
		return phpPrelude
	}
	return ""
}

func (phpWriter) end() string { return "" }

func (phpWriter) text(s string) string { return s }

func (phpWriter) print(expr string) string {
	return "<?php echo " + expr + "; ?>"
}

// comment keeps text inside a PHP comment. A line comment ends at "?>" and
// at either line break character, so that sequence is broken up and text
// with a line break uses a block comment.
func (phpWriter) comment(text string) string {
	if strings.ContainsAny(text, "\r\n") {
		return "<?php /* " + strings.ReplaceAll(text, "*/", "* /") + " */ ?>"
	}
	return "<?php // " + strings.ReplaceAll(text, "?>", "? >") + " ?>"
}

func (phpWriter) openLoop(counter, item, iterable string) string {
	return "<?php " + counter + " = -1; foreach(" + iterable + " as " + item + "): " + counter + "++; ?>"
}

func (phpWriter) closeLoop() string { return "<?php endforeach; ?>" }

func (phpWriter) openCond(cond string) string { return "<?php if(" + cond + "): ?>" }

func (phpWriter) elseBranch() (string, bool) { return "<?php else: ?>", true }

func (phpWriter) closeCond() string { return "<?php endif; ?>" }

// phpPrelude defines the helpers of filters without a PHP builtin.
const phpPrelude = `<?php
if (!function_exists('sweep_length')) {
    function sweep_length($value) {
        if (is_array($value) || $value instanceof Countable) {
            return count($value);
        }
        return strlen((string) $value);
    }
}
if (!function_exists('sweep_random')) {
    function sweep_random($value) {
        if ($value instanceof Traversable) {
            $value = iterator_to_array($value, false);
        }
        if (!is_array($value) || count($value) === 0) {
            return null;
        }
        return $value[array_rand($value)];
    }
}
if (!function_exists('sweep_linkify')) {
    function sweep_linkify($value) {
        return preg_replace('~\b(https?://[^\s<>"\']+)~i', '<a href="$1">$1</a>', (string) $value);
    }
}
?>
`
