package render

import (
	"regexp"
	"time"
)

// Context maps placeholder names to their values.
type Context map[string]string

const (
	StudentName    = "studentName"
	CourseName     = "courseName"
	CompletionDate = "completionDate"

	DateLayout = "January 2, 2006"
)

var tokenPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// SampleContext is used when no real enrollment is available.
func SampleContext(now time.Time) Context {
	return Context{
		StudentName:    "John Doe",
		CourseName:     "Sample Course",
		CompletionDate: now.Format(DateLayout),
	}
}

// WithDefaults returns sample values overridden by the non-empty entries of ctx.
func (ctx Context) WithDefaults(now time.Time) Context {
	out := SampleContext(now)
	for k, v := range ctx {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Substitute replaces every {{name}} with ctx[name]. Tokens with no value in
// ctx are left as written.
func Substitute(content string, ctx Context) string {
	if len(ctx) == 0 {
		return content
	}
	return tokenPattern.ReplaceAllStringFunc(content, func(token string) string {
		name := tokenPattern.FindStringSubmatch(token)[1]
		if v, ok := ctx[name]; ok {
			return v
		}
		return token
	})
}
