package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/simonhull/oggseek"
)

// Useful test tool to confirm what the reader sees page by page.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ogg-dump <file.ogg>")
		fmt.Println("       ogg-dump -version")
		os.Exit(1)
	}
	if os.Args[1] == "-version" {
		fmt.Println(oggseek.GetVersionInfo())
		return
	}

	r, err := oggseek.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	r.SetPageHandler(dumpPage)
	r.SetPacketHandler(dumpPacket)

	for {
		n, err := r.Read(64 * 1024)
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	for _, w := range r.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}
}

func dumpPage(r *oggseek.Reader, p *oggseek.Page, serial uint32) oggseek.Status {
	var flags []string
	if p.Continued() {
		flags = append(flags, "cont")
	}
	if p.BOS() {
		flags = append(flags, "bos")
	}
	if p.EOS() {
		flags = append(flags, "eos")
	}

	fmt.Printf("%08x: serial %08x page %d gp %d (%d bytes, %d packets) %s\n",
		r.Tell(), serial, p.PageNo(), p.GranulePos(), p.Len(), p.Packets(), strings.Join(flags, ","))
	return oggseek.Continue
}

func dumpPacket(r *oggseek.Reader, p *oggseek.Packet, serial uint32) oggseek.Status {
	content, _ := r.Content(serial)
	fmt.Printf("  %s packet %d: %d bytes gp %d units %d\n",
		content, p.PacketNo, len(p.Data), p.GranulePos, r.TellUnits())
	return oggseek.Continue
}
