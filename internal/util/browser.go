package util

import (
	"os/exec"
	"runtime"
)

// OpenBrowser 用系统默认浏览器打开地址；主方式失败时依次尝试备选命令
func OpenBrowser(url string) error {
	var primary *exec.Cmd
	var fallbacks [][]string

	switch runtime.GOOS {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		primary = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		fallbacks = [][]string{{"explorer", url}}
	case "darwin":
		primary = exec.Command("open", url)
	default:
		primary = exec.Command("xdg-open", url)
		for _, b := range []string{"sensible-browser", "google-chrome", "firefox", "chromium-browser"} {
			fallbacks = append(fallbacks, []string{b, url})
		}
	}

	err := primary.Start()
	if err == nil {
		return nil
	}
	for _, args := range fallbacks {
		if exec.Command(args[0], args[1:]...).Start() == nil {
			return nil
		}
	}
	return err
}
