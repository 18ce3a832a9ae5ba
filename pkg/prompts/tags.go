package prompts

import "regexp"

var tagPattern = regexp.MustCompile(`\{\{([A-Za-z_]*)\}\}`)

// ReplaceTags substitutes every {{name}} in source with replacements[name].
// Tags without a replacement are left in place so a later stage (usually the
// host platform) can expand them.
func ReplaceTags(source string, replacements map[string]string) string {
	return tagPattern.ReplaceAllStringFunc(source, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := replacements[name]; ok {
			return value
		}
		return match
	})
}
