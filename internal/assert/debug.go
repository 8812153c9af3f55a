//go:build dynquery_debug

package assert

const Enabled = true
