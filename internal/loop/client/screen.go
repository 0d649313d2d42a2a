package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/sshooter/internal/draw"
	"github.com/tomz197/sshooter/internal/loop/config"
	"github.com/tomz197/sshooter/internal/quality"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	// The room renders behind the title and playing screens. Shutdown and
	// inactivity screens are text only.
	if c.state.GameState != GameStateShutdown && !c.state.isInactive {
		c.session.Draw()
		c.canvas.Render(c.chunkWriter)
		c.canvas.RenderBorder(c.chunkWriter)
	}

	c.drawUI()

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current state.
func (c *Client) drawUI() {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.GameState {
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, termHeight)
	case GameStateStart:
		c.drawStartScreen(centerX, centerY)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "INACTIVITY WARNING"
	cw.WriteAt(centerX-len(title)/2, centerY-2, title)

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	cw.WriteAt(centerX-len(msg)/2, centerY, msg)

	hint := "Press any key to continue"
	cw.WriteAt(centerX-len(hint)/2, centerY+2, hint)
}

// drawStartScreen draws the title screen over the idle room.
func (c *Client) drawStartScreen(centerX, centerY int) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		` ___  ___  _  _   ___    ___   _____  ___  ___ `,
		`/ __|/ __|| || | / _ \  / _ \ |_   _|| __|| _ \`,
		`\__ \\__ \| __ || (_) || (_) |  | |  | _| |   /`,
		`|___/|___/|_||_| \___/  \___/   |_|  |___||_|_\`,
		`                                               `,
	}

	// Find max width for centering
	titleWidth := 0
	for _, line := range titleArt {
		if len(line) > titleWidth {
			titleWidth = len(line)
		}
	}

	// Draw title art centered
	cw := c.chunkWriter
	titleStartY := centerY - 8
	for i, line := range titleArt {
		cw.WriteAt(centerX-titleWidth/2, titleStartY+i, line)
	}

	// Subtitle
	subtitle := "~ First-person aim practice over SSH ~"
	cw.WriteAt(centerX-len(subtitle)/2, titleStartY+len(titleArt)+1, subtitle)

	// Controls section
	controlsY := titleStartY + len(titleArt) + 3
	controlHeader := "Controls"
	cw.WriteAt(centerX-len(controlHeader)/2, controlsY, controlHeader)

	controlLines := []string{
		"WASD / Arrows . . Look",
		"SPACE / Click  . Shoot",
		"Scroll . . Target size",
		"1 2 3 4  . . . Quality",
		"Q  . . . . . . .  Quit",
	}
	for i, line := range controlLines {
		cw.WriteAt(centerX-len(line)/2, controlsY+1+i, line)
	}

	// Blinking start prompt. The off phase blanks the cells and marks them
	// dirty so the room shows through until the next on phase.
	prompt := ">>  Press SPACE to Start  <<"
	promptCol := centerX - len(prompt)/2
	promptRow := controlsY + len(controlLines) + 2
	if time.Now().UnixMilli()/600%2 == 0 {
		cw.WriteAt(promptCol, promptRow, prompt)
	} else {
		cw.WriteAt(promptCol, promptRow, strings.Repeat(" ", len(prompt)))
		c.canvas.MarkTextDirty(promptCol, promptRow, len(prompt))
	}

	// GitHub link (OSC 8 clickable hyperlink)
	ghURL := "https://github.com/tomz197/sshooter"
	ghLabel := "Click to view on github"
	ghLine := fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", ghURL, ghLabel)
	cw.WriteAt(centerX-len(ghLabel)/2, controlsY+len(controlLines)+4, ghLine)
	ghLabel2 := "github.com/tomz197/sshooter"
	ghLine2 := fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", ghURL, ghLabel2)
	cw.WriteAt(centerX-len(ghLabel2)/2, controlsY+len(controlLines)+5, ghLine2)
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen (since we no longer clear every frame).
func (c *Client) drawPlayingHUD(termWidth, termHeight int) {
	cw := c.chunkWriter

	// Score and streak (top left)
	scoreText := fmt.Sprintf("Score: %-8d", c.tracker.Score())
	cw.WriteAt(2, 1, scoreText)
	streakText := fmt.Sprintf("Streak: %-4d", c.tracker.Streak())
	cw.WriteAt(2, 2, streakText)

	// Frame rate and quality tier (top right)
	qc := c.session.Quality()
	perfText := fmt.Sprintf("FPS:%3.0f  %-7s", qc.Average(), tierLabel(qc))
	cw.WriteAt(termWidth-17, 1, perfText)

	// Target size (top right, below performance)
	sizeText := fmt.Sprintf("Size: %-4.1f", c.session.Director().TargetSize())
	cw.WriteAt(termWidth-17, 2, sizeText)

	// Leaderboard panel (right side)
	c.drawLeaderboard(termWidth, termHeight)

	// Accuracy and reaction times (bottom left)
	accText := fmt.Sprintf("Accuracy: %5.1f%%  Hits:%4d/%-4d",
		c.tracker.Accuracy()*100, c.tracker.Hits(), c.tracker.Shots())
	cw.WriteAt(2, termHeight-1, accText)
	reactText := fmt.Sprintf("Last:%sms  Best:%sms",
		reactionText(c.tracker.LastReaction()), reactionText(c.tracker.BestReaction()))
	cw.WriteAt(2, termHeight, reactText)

	// Connected players (bottom right)
	playersText := fmt.Sprintf("Players: %-4d", c.players)
	cw.WriteAt(termWidth-len(playersText)-1, termHeight, playersText)
}

// tierLabel formats the quality tier for the HUD. Auto mode carries a
// star so manual overrides are visible.
func tierLabel(qc *quality.Controller) string {
	label := strings.ToUpper(qc.Tier().String())
	if qc.Auto() {
		label += "*"
	}
	return label
}

// reactionText formats a reaction time in whole milliseconds, fixed at
// four characters so the HUD stays aligned.
func reactionText(d time.Duration) string {
	if d <= 0 {
		return " ---"
	}
	ms := d.Milliseconds()
	if ms > 9999 {
		ms = 9999
	}
	return fmt.Sprintf("%4d", ms)
}

const leaderboardPanelWidth = 24

// drawLeaderboard draws the top-scores panel below the performance
// readout. The local player's row is bright cyan.
func (c *Client) drawLeaderboard(termWidth, termHeight int) {
	entries := c.board.Entries
	if len(entries) == 0 {
		return
	}

	// Position: top right, below the size indicator
	startCol := termWidth - leaderboardPanelWidth - 3 // border + padding
	startRow := 4
	if startCol < 1 || startRow+len(entries)+1 > termHeight-2 {
		return // Not enough space
	}

	cw := c.chunkWriter
	header := "┌─ TOP SCORES " + strings.Repeat("─", leaderboardPanelWidth-13) + "┐"
	cw.WriteAt(startCol, startRow, header)
	c.canvas.MarkTextDirty(startCol, startRow, leaderboardPanelWidth+2)

	for i, e := range entries {
		name := e.Username
		if len(name) > 12 {
			name = name[:12]
		}
		line := fmt.Sprintf(" %d. %-12s %6d ", i+1, name, e.Score)

		cw.WriteAt(startCol, startRow+1+i, "│")
		if e.Username == c.username {
			cw.WriteString(draw.ColorBrightCyan)
			cw.WriteString(line)
			cw.WriteString(draw.ColorReset)
		} else {
			cw.WriteString(line)
		}
		cw.WriteString("│")
		c.canvas.MarkTextDirty(startCol, startRow+1+i, leaderboardPanelWidth+2)
	}

	cw.WriteAt(startCol, startRow+1+len(entries), "└"+strings.Repeat("─", leaderboardPanelWidth)+"┘")
	c.canvas.MarkTextDirty(startCol, startRow+1+len(entries), leaderboardPanelWidth+2)
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "SERVER SHUTTING DOWN"
	cw.WriteAt(centerX-len(title)/2, centerY-3, title)

	msg1 := "The server is restarting for maintenance."
	cw.WriteAt(centerX-len(msg1)/2, centerY-1, msg1)

	msg2 := "Please reconnect in a moment."
	cw.WriteAt(centerX-len(msg2)/2, centerY, msg2)

	remaining := int(c.state.shutdownTimer) + 1
	countdown := fmt.Sprintf("Disconnecting in %d seconds...", remaining)
	cw.WriteAt(centerX-len(countdown)/2, centerY+2, countdown)

	hint := "Press Q to disconnect now"
	cw.WriteAt(centerX-len(hint)/2, centerY+4, hint)
}
