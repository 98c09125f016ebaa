package config

import (
	"fmt"
	"sort"
)

const whatsAppRoot = "/sdcard/Android/media/com.whatsapp/WhatsApp"

const (
	PresetMedia           = "media"
	PresetWhatsApp        = "whatsapp"
	PresetWhatsAppBackups = "whatsapp-backups"
)

var builtinPresets = map[string][]string{
	PresetMedia: {
		"/sdcard/DCIM",
		"/sdcard/Pictures",
	},
	PresetWhatsApp: {
		whatsAppRoot + "/Media/WhatsApp Audio",
		whatsAppRoot + "/Media/WhatsApp Images",
		whatsAppRoot + "/Media/WhatsApp Video",
		whatsAppRoot + "/Media/WhatsApp Voice Notes",
		whatsAppRoot + "/Media/WhatsApp Video Notes",
		whatsAppRoot + "/Media/WhatsApp Documents",
	},
	PresetWhatsAppBackups: {
		whatsAppRoot + "/Backups",
		whatsAppRoot + "/Databases",
	},
}

// PresetPaths returns the device paths of a preset. Custom presets override
// built-in ones of the same name.
func PresetPaths(name string, custom map[string][]string) ([]string, error) {
	if paths, ok := custom[name]; ok {
		return paths, nil
	}
	if paths, ok := builtinPresets[name]; ok {
		return paths, nil
	}
	return nil, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames(custom))
}

func PresetNames(custom map[string][]string) []string {
	seen := map[string]bool{}
	var names []string
	for name := range builtinPresets {
		seen[name] = true
		names = append(names, name)
	}
	for name := range custom {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
