package useragent

import "github.com/mileusna/useragent"

func ParseUserAgent(userAgent string) *UserAgent {
	parsed := useragent.Parse(userAgent)
	device := parsed.Device
	if device == "" {
		switch {
		case parsed.Mobile:
			device = "mobile"
		case parsed.Tablet:
			device = "tablet"
		case parsed.Desktop:
			device = "desktop"
		}
	}
	return &UserAgent{
		Bot:       parsed.Bot,
		OS:        parsed.OS,
		OSVersion: parsed.OSVersion,
		Device:    device,
		Name:      parsed.Name,
		Version:   parsed.VersionNoFull(),
	}
}
