package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/minerdeck/internal/format"
)

// renderOverview renders the seven-card overview bar.
// Wide terminals (>= 112 cols): all 7 cards in a single horizontal row.
// Narrow terminals (< 112 cols): cards stacked in rows of 2 (4 rows).
// Returns empty string until the first status has arrived.
func renderOverview(app *App) string {
	v := app.view
	if v.sync.LastUpdated.IsZero() {
		return ""
	}

	width := app.width
	if width <= 0 {
		width = 80
	}

	narrowMode := width < 112

	var cardWidth int
	if narrowMode {
		// 2 cards per row: split width evenly between 2 cards.
		cardWidth = (width - 4) / 2
		if cardWidth < 10 {
			cardWidth = 10
		}
	} else {
		cardWidth = (width - 14) / 7
		if cardWidth < 12 {
			cardWidth = 12
		}
	}

	// Mini bar inner width: card width minus padding (1 char each side).
	barWidth := cardWidth - 4
	if barWidth < 4 {
		barWidth = 4
	}

	// Card 1: CPU miner: green while hashing.
	cpuState, cpuFg := "idle", colorGray
	if v.cpu.IsMining {
		cpuState, cpuFg = "mining", colorGreen
	}
	if v.cpu.IsMining && !v.cpu.Connection.IsConnected {
		cpuState, cpuFg = "no pool", colorYellow
	}
	if !v.cpuEnabled && !v.cpu.IsMining {
		cpuState = "disabled"
	}
	card1 := StyleOverviewCard.
		Foreground(cpuFg).
		Width(cardWidth).
		Render(format.FormatHashrate(v.cpu.HashRate) + "\n" + cpuState + "\nCPU Miner")

	// Card 2: GPU miner: blue while hashing, dim when absent or disabled.
	gpuVal, gpuState, gpuFg := format.FormatHashrate(v.gpu.HashRate), "idle", colorGray
	switch {
	case !v.gpu.IsAvailable:
		gpuVal, gpuState = "N/A", "no device"
	case !v.gpuEnabled:
		gpuState = "disabled"
	case v.gpu.IsMining:
		gpuState, gpuFg = "mining", colorBlue
	}
	card2 := StyleOverviewCard.
		Foreground(gpuFg).
		Width(cardWidth).
		Render(gpuVal + "\n" + gpuState + "\nGPU Miner")

	// Card 3: Base node: block height, sync state and peers.
	nodeState, nodeFg := "syncing", colorYellow
	switch {
	case !v.node.IsConnected:
		nodeState, nodeFg = "offline", colorRed
	case v.node.IsSynced:
		nodeState, nodeFg = "synced", colorIndigo
	}
	card3 := StyleOverviewCard.
		Foreground(nodeFg).
		Width(cardWidth).
		Render(fmt.Sprintf("#%s\n%s · %d peers\nBase Node",
			format.FormatNumber(int64(v.node.BlockHeight)), nodeState, len(v.node.ConnectedPeers)))

	// Card 4: Wallet: available balance, pending incoming underneath.
	pending := StyleDim.Render("no pending")
	if v.wallet.PendingIncomingBalance > 0 {
		pending = "+" + format.FormatXTM(v.wallet.PendingIncomingBalance)
	}
	card4 := StyleOverviewCard.
		Foreground(colorCyan).
		Width(cardWidth).
		Render(format.FormatXTM(v.wallet.AvailableBalance) + "\n" + pending + "\nWallet" + shortAddress(v.address))

	// Card 5: Airdrop: points and gems pushed by the backend.
	airdropBody := format.FormatPoints(v.points.Base) + " pts\n" + format.FormatPoints(v.points.Gems) + " gems"
	if !v.loggedIn {
		airdropBody = "---\nlogged out"
	}
	card5 := StyleOverviewCard.
		Foreground(colorPurple).
		Width(cardWidth).
		Render(airdropBody + "\nAirdrop")

	// Card 6: Host CPU% with mini bar and memory: threshold-colored.
	hw := v.hardware
	cpuPct := hw.CPUPercent
	sev := cpuSeverity(cpuPct)
	if ms := memSeverity(hw.MemPercent()); ms > sev {
		sev = ms
	}
	hwVal := fmt.Sprintf("%.1f%%", cpuPct)
	if sev == severityCritical {
		hwVal += "!"
	}
	memLine := "mem " + format.FormatPercent(hw.MemPercent())
	if hw.MemTotalBytes > 0 {
		memLine = format.FormatBytes(hw.MemUsedBytes) + "/" + format.FormatBytes(hw.MemTotalBytes)
	}
	card6 := StyleOverviewCard.
		Foreground(severityFg(sev)).
		Width(cardWidth).
		Render(hwVal + "\n" + renderMiniBar(cpuPct, barWidth) + "\n" + memLine + "\nHost")

	// Card 7: P2Pool: miners and pool hash rate summed over the share chains.
	p2Body, p2Fg := "---\nnot running", colorGray
	if len(v.p2pool) > 0 {
		miners, rate, connected := v.p2pool.Totals()
		state := "offline"
		p2Fg = colorRed
		if connected {
			state, p2Fg = strings.Join(v.p2pool.Chains(), "+"), colorOrange
		}
		p2Body = fmt.Sprintf("%s\n%s miners\n%s", format.FormatHashrate(rate), format.FormatNumber(int64(miners)), state)
	}
	card7 := StyleOverviewCard.
		Foreground(p2Fg).
		Width(cardWidth).
		Render(p2Body + "\nP2Pool")

	if narrowMode {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		row3 := lipgloss.JoinHorizontal(lipgloss.Top, card5, card6)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, row3, card7)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5, card6, card7)
}

// shortAddress abbreviates a wallet address for the card label.
func shortAddress(addr string) string {
	switch {
	case addr == "":
		return ""
	case len(addr) <= 12:
		return " " + addr
	}
	return " " + addr[:6] + "…" + addr[len(addr)-4:]
}

// renderMiniBar renders a mini progress bar using Unicode block characters.
// Fills proportionally using "█" (U+2588) for filled and "░" (U+2591) for empty cells.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
