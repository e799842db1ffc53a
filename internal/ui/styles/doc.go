// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the huddle TUI.

All colors are Lip Gloss AdaptiveColor values. NewTheme resolves them against
the configured theme: "dark" and "light" force the background, "auto" asks
the terminal.

# Color System (colors.go)

  - Purple - selections and the assistant panel
  - Cyan - the viewer's own name and focus rings
  - Amber - pending delivery and search highlights
  - Rose - failed delivery and errors
  - Emerald - success toasts

Authors get a stable avatar color from AvatarColor.

# Theme (theme.go)

Theme groups the styles by region: sidebar, feed, markdown, composer,
assistant panel, status bar and toasts. Layout modes pick which regions fit:

	LayoutNarrow - feed only
	LayoutMedium - sidebar and feed
	LayoutWide   - sidebar, feed and assistant panel
*/
package styles
