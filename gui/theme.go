//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

type snapTheme struct{}

func (d *snapTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{18, 18, 18, 255}
	case theme.ColorNameForeground:
		return color.RGBA{220, 220, 220, 255}
	case theme.ColorNamePrimary:
		return color.RGBA{40, 90, 200, 255}
	case theme.ColorNameDisabled:
		return color.RGBA{90, 90, 90, 255}
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

func (d *snapTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (d *snapTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size enlarges body text since recognized lines are read at a distance.
func (d *snapTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return theme.DefaultTheme().Size(name) + 2
	}
	return theme.DefaultTheme().Size(name)
}
