package model

// Action is a human-friendly operating mode for an hour.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

func ActionFromStep(chargeKWh, dischargeKWh float64) Action {
	switch {
	case chargeKWh > 0:
		return ActionCharging
	case dischargeKWh > 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
