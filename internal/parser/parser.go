// Package parser turns raw platform text (property dumps, package manager
// dumps) into structured fields. Missing values degrade to the "Unknown"
// sentinel; nothing in this package returns an error or panics on malformed
// input.
package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Unknown is the canonical missing-value marker. Downstream consumers and
// tests depend on this exact literal.
const Unknown = "Unknown"

// ExtractProperty scans line-oriented "[key]: [value]" text, as produced by
// getprop-style property dumps, and returns the value for an exact key match.
// Partial or prefix keys never match because the closing bracket is part of
// the needle.
func ExtractProperty(raw, key string) string {
	if raw == "" {
		return Unknown
	}

	needle := "[" + key + "]: ["
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, needle) {
			continue
		}
		value := line[len(needle):]
		if idx := strings.LastIndex(value, "]"); idx >= 0 {
			return value[:idx]
		}
		return value
	}

	return Unknown
}

// ExtractPattern returns capture group 1 of the first match of re in raw, or
// Unknown when there is no match. Patterns without a capture group are a
// caller bug.
func ExtractPattern(raw string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(raw)
	if len(m) < 2 {
		return Unknown
	}
	return m[1]
}

// maxPermissions caps the permissions section of an app report. The cap
// bounds report size; it is not a sampling policy.
const maxPermissions = 10

// Each field tries its patterns in order so one report format works for both
// package-manager dumps (Android) and bundle property listings (iOS).
var (
	versionNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`versionName=(\S+)`),
		regexp.MustCompile(`CFBundleShortVersionString\s*=\s*"?([^";\n]+)"?;?`),
	}
	versionCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`versionCode=(\d+)`),
		regexp.MustCompile(`CFBundleVersion\s*=\s*"?([^";\n]+)"?;?`),
	}
	targetSDKPatterns = []*regexp.Regexp{
		regexp.MustCompile(`targetSdk=(\d+)`),
		regexp.MustCompile(`DTPlatformVersion\s*=\s*"?([^";\n]+)"?;?`),
	}
	minSDKPatterns = []*regexp.Regexp{
		regexp.MustCompile(`minSdk=(\d+)`),
		regexp.MustCompile(`MinimumOSVersion\s*=\s*"?([^";\n]+)"?;?`),
	}
	installTimePattern = regexp.MustCompile(`firstInstallTime=(.+)`)
	updateTimePattern  = regexp.MustCompile(`lastUpdateTime=(.+)`)
	permissionPattern  = regexp.MustCompile(`([A-Za-z][\w.]*\.permission\.[A-Z0-9_]+)`)
)

func extractFirst(raw string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if v := ExtractPattern(raw, re); v != Unknown {
			return strings.TrimSpace(v)
		}
	}
	return Unknown
}

// FormatAppInfo assembles a human-readable report from a raw app metadata
// dump. Every field falls back to Unknown independently, so a partial dump
// still yields a full report. The permissions list keeps the first
// maxPermissions matches in source order.
func FormatAppInfo(raw, packageID string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "App Info: %s\n", packageID)
	fmt.Fprintf(&b, "Version Name: %s\n", extractFirst(raw, versionNamePatterns))
	fmt.Fprintf(&b, "Version Code: %s\n", extractFirst(raw, versionCodePatterns))
	fmt.Fprintf(&b, "Min SDK: %s\n", extractFirst(raw, minSDKPatterns))
	fmt.Fprintf(&b, "Target SDK: %s\n", extractFirst(raw, targetSDKPatterns))
	fmt.Fprintf(&b, "First Installed: %s\n", strings.TrimSpace(ExtractPattern(raw, installTimePattern)))
	fmt.Fprintf(&b, "Last Updated: %s\n", strings.TrimSpace(ExtractPattern(raw, updateTimePattern)))

	perms := permissionPattern.FindAllString(raw, maxPermissions)
	if len(perms) > 0 {
		b.WriteString("Permissions:\n")
		for _, p := range perms {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	} else {
		b.WriteString("Permissions: Unknown\n")
	}

	return b.String()
}
