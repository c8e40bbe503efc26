package interfaces

import (
	"context"

	"market-assistant/src/models"
)

// -----------------------------------------------------------------------------
// IDataExchanger shares dashboard state with external listeners (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Broadcast pushes a snapshot to connected listeners.
	Broadcast(snapshot models.MDashboardSnapshot)

	// Start the server
	Start() error

	// Stop the server gracefully
	Stop() error
}

// -----------------------------------------------------------------------------
// ISeriesView is the read-only view of the dashboard used by the conversation.
// -----------------------------------------------------------------------------

type ISeriesView interface {
	Snapshot() models.MDashboardSnapshot
}

// -----------------------------------------------------------------------------
// ISelectionListener is told when the displayed symbol changes.
// -----------------------------------------------------------------------------
type ISelectionListener interface {
	NotifySelectionChanged(symbol string)
}

// -----------------------------------------------------------------------------
// IDashboard drives the chart selection from the outer surfaces.
// -----------------------------------------------------------------------------
type IDashboard interface {
	ISeriesView
	Select(ctx context.Context, selection models.MChartSelection) (models.MDashboardSnapshot, error)
	Refresh(ctx context.Context) (models.MDashboardSnapshot, error)
}
