package topics

const (
	// Movimentos notáveis de linha detectados pelo refresh
	MovementEvents = "movement_events"
)
