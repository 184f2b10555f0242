package logic

// PulseWidth maps a servo angle to the PWM compare register value.
// Angles are clamped to [0, ServoMaxAngle]. The division truncates, so
// 90 degrees gives 6 and 180 degrees gives 9.
func PulseWidth(angle int) int {
	if angle < 0 {
		angle = 0
	} else if angle > ServoMaxAngle {
		angle = ServoMaxAngle
	}
	return ServoPulseBase + (angle*ServoPulseSpan)/ServoMaxAngle
}
