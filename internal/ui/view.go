package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/genesis-launchpad/internal/api"
)

var (
	launchColumns = []table.Column{
		{Title: "Mint", Width: 12},
		{Title: "Model", Width: 13},
		{Title: "Price", Width: 12},
		{Title: "Sold", Width: 16},
		{Title: "Raised SOL", Width: 14},
		{Title: "Buys", Width: 6},
		{Title: "Status", Width: 8},
	}
	poolColumns = []table.Column{
		{Title: "Pool", Width: 12},
		{Title: "Price A/B", Width: 14},
		{Title: "Liquidity A", Width: 16},
		{Title: "Liquidity B", Width: 16},
		{Title: "Fee %", Width: 7},
		{Title: "Oracle", Width: 8},
	}
	affiliateColumns = []table.Column{
		{Title: "Affiliate", Width: 12},
		{Title: "Tier", Width: 10},
		{Title: "Rate %", Width: 8},
		{Title: "Volume", Width: 16},
		{Title: "Referrals", Width: 10},
		{Title: "Score", Width: 10},
	}
)

func short(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func launchRows(launches []api.LaunchView) []table.Row {
	rows := make([]table.Row, 0, len(launches))
	for _, l := range launches {
		status := "closed"
		if l.Active {
			status = "live"
		}
		rows = append(rows, table.Row{
			short(l.Mint.String()),
			l.PricingModel.String(),
			l.Price.StringFixed(4),
			l.Sold.String(),
			l.SolCollected.StringFixed(3),
			fmt.Sprint(l.PurchaseCount),
			status,
		})
	}
	return rows
}

func poolRows(pools []api.PoolView) []table.Row {
	rows := make([]table.Row, 0, len(pools))
	for _, p := range pools {
		oracle := "fresh"
		if p.OracleStale {
			oracle = "stale"
		}
		rows = append(rows, table.Row{
			short(p.Address.String()),
			p.PriceDisplay.StringFixed(6),
			p.LiquidityADisplay.String(),
			p.LiquidityBDisplay.String(),
			p.FeePercent.StringFixed(2),
			oracle,
		})
	}
	return rows
}

func affiliateRows(affiliates []api.AffiliateView) []table.Row {
	rows := make([]table.Row, 0, len(affiliates))
	for _, a := range affiliates {
		rows = append(rows, table.Row{
			short(a.Affiliate.String()),
			a.Tier.String(),
			a.RatePercent.StringFixed(2),
			a.VolumeDisplay.String(),
			fmt.Sprint(a.SuccessfulReferrals),
			fmt.Sprint(a.PerformanceScore),
		})
	}
	return rows
}

func (m Model) View() string {
	var b strings.Builder

	tabs := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		if t == m.active {
			tabs = append(tabs, m.styles.ActiveTab.Render(t.String()))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(t.String()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.Title.Render("Genesis Launchpad"), lipgloss.JoinHorizontal(lipgloss.Top, tabs...)))
	b.WriteString("\n\n")
	b.WriteString(m.tables[m.active].View())
	b.WriteString("\n")

	if m.active == tabPools && len(m.sparks) > 0 {
		b.WriteString(m.trendPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) trendPanel() string {
	addrs := make([]string, 0, len(m.sparks))
	for addr := range m.sparks {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	lines := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		lines = append(lines, fmt.Sprintf("%s %s", m.styles.Muted.Render(short(addr)), m.sparks[addr].View()))
	}
	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}
