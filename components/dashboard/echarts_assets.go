package dashboard

import (
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsHost is the public CDN serving the ECharts runtime and themes.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// envEChartsCDN overrides the assets host (e.g. a self-hosted bucket).
	envEChartsCDN = "GO_DASHBOARD_ECHARTS_CDN"
)

// ResolveEChartsAssetsHost picks the configured host, then GO_DASHBOARD_ECHARTS_CDN,
// then the public CDN.
func ResolveEChartsAssetsHost(configured string) string {
	if host := strings.TrimSpace(configured); host != "" {
		return ensureTrailingSlash(host)
	}
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHost
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
