// Package device owns the serial connection to a scanner.
//
// A Session reads newline-terminated text in a background goroutine and
// queues one token per line. The UI loop calls Poll on a timer to pick the
// tokens up without blocking; nothing else in the program touches the port.
//
//	s, err := device.Open("/dev/ttyUSB0", device.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if token, ok := s.Poll(); ok {
//	    fmt.Println(token)
//	}
package device
