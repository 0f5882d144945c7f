package ui

type ConfirmationState struct {
	Active  bool
	Title   string
	Message string
}

// RenderConfirmationModal asks a y/n question
func RenderConfirmationModal(state ConfirmationState, width, height int) string {
	modalWidth := clampModalWidth(60, width)
	return RenderThreeSectionModal(
		state.Title,
		centeredLines(state.Message, modalWidth),
		FormatFooter("y", "Yes", "n", "No"),
		ModalTypeWarning,
		modalWidth,
		width,
		height,
	)
}
