package invoker

// resolveSetting applies request-over-builder precedence: the request value wins when set,
// then the builder default, then fallback. The zero value means "not set".
func resolveSetting[Setting comparable](requestValue Setting, builderDefault Setting, fallback Setting) Setting {
	var unset Setting
	if requestValue != unset {
		return requestValue
	}
	if builderDefault != unset {
		return builderDefault
	}
	return fallback
}
