package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fiscora/internal/core"
)

var transactionHeader = []any{"ID", "Date", "Description", "Type", "Direction", "Amount", "Recurring", "Interval", "Every (days)", "End date"}

var summaryHeader = []any{"Month", "Income", "Expense", "Net"}

// transactionRow renders tx as one sheet row, amounts in euros.
func transactionRow(tx core.Transaction) []any {
	direction := "Expense"
	if tx.Incoming {
		direction = "Income"
	}
	recurring, interval, days, end := "No", "", "", ""
	if tx.Recurring {
		recurring = "Yes"
		interval = string(tx.Interval)
		if tx.DaysInterval > 0 {
			days = strconv.Itoa(tx.DaysInterval)
		}
		end = tx.EndDate.String()
	}
	return []any{
		tx.ID,
		tx.StartDate.String(),
		tx.Description,
		tx.Type,
		direction,
		tx.Amount.Euros(),
		recurring,
		interval,
		days,
		end,
	}
}

// summaryRows renders a year as header, twelve month rows and a total row.
func summaryRows(year core.YearSummary) [][]any {
	rows := make([][]any, 0, 14)
	rows = append(rows, summaryHeader)
	for m := 1; m <= 12; m++ {
		s := year[m]
		rows = append(rows, []any{time.Month(m).String(), s.Income.Euros(), s.Expense.Euros(), s.Net().Euros()})
	}
	total := year.Total()
	rows = append(rows, []any{"Total", total.Income.Euros(), total.Expense.Euros(), total.Net().Euros()})
	return rows
}

// findRow returns the 1-based sheet row whose first column holds id, or 0.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

// quoteSheet wraps a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
