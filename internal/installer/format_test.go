package installer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hwuu/rokuloader/internal/installer"
)

func TestFormatResponse_InstallSuccess(t *testing.T) {
	body := "<html><body><center>Install Success&nbsp;OK</center></body></html>"
	assert.Equal(t, "Install Success OK", installer.FormatResponse(body))
}

func TestFormatResponse_NoMarker(t *testing.T) {
	inputs := []string{
		"",
		"plain text reply",
		"<html><body><p>Unauthorized</p></body></html>",
		"<CENTER>upper case marker is not recognised</CENTER>",
	}
	for _, in := range inputs {
		assert.Equal(t, in, installer.FormatResponse(in))
	}
}

func TestFormatResponse_MultilineTagsAndBlankRuns(t *testing.T) {
	body := "<html><head><title>Roku Development Kit</title></head>\n" +
		"<body><center>\n\n<font color=\"red\"\n size=\"2\">Application Received:&nbsp;2500000 bytes stored.</font>\n\n\n" +
		"<br>\n\nInstall Success.\n</center></body></html>"

	got := installer.FormatResponse(body)
	assert.Equal(t, "\nApplication Received: 2500000 bytes stored.\nInstall Success.\n", got)
}

func TestFormatResponse_FirstMarkerOnly(t *testing.T) {
	body := "<center>first</center><center>second</center>"
	assert.Equal(t, "firstsecond", installer.FormatResponse(body))
}

func TestFormatResponse_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"no marker here",
		"<html><body><center>Install Success&nbsp;OK</center></body></html>",
		"<center>\n\n\n\nA\n\n<b>B</b>\n\n\nC",
		"<center>&nb<i>sp;tricky <<x>center>> <center",
		"prefix <center><center>nested</center></center>",
		"<center>unterminated <tag",
	}
	for _, in := range inputs {
		once := installer.FormatResponse(in)
		assert.Equal(t, once, installer.FormatResponse(once), "input %q", in)
	}
}
