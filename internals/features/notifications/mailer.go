package notifications

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	orderModel "tokoku_backend/internals/features/orders/model"
)

// Mailer kirim notifikasi perubahan status pesanan.
// Implementasi boleh nil-safe: kegagalan kirim tidak boleh mengganggu flow utama.
type Mailer interface {
	SendOrderStatusUpdate(toEmail string, order *orderModel.Order) error
}

/* ===================== SMTP (gomail) ===================== */

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailerFromEnv baca SMTP_HOST/SMTP_PORT/SMTP_USER/SMTP_PASS/SMTP_FROM.
// Return nil kalau host kosong (mailer dinonaktifkan).
func NewSMTPMailerFromEnv() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("⚠️ SMTP_HOST kosong, notifikasi email dinonaktifkan")
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) SendOrderStatusUpdate(toEmail string, order *orderModel.Order) error {
	if m == nil || toEmail == "" {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Update pesanan #%s", shortID(order.OrderID.String())))
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Halo,</p>
<p>Status pesanan Anda <b>#%s</b> sekarang: <b>%s</b>.</p>
<p>Total: <b>$%.2f</b></p>
<p>Terima kasih sudah berbelanja di Tokoku.</p>`,
		shortID(order.OrderID.String()), statusLabel(order.OrderStatus), order.OrderTotalUSD,
	))

	return m.dialer.DialAndSend(msg)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusLabel(status string) string {
	switch status {
	case orderModel.OrderStatusProcessing:
		return "Sedang diproses"
	case orderModel.OrderStatusPaidPendingReview:
		return "Pembayaran menunggu verifikasi"
	case orderModel.OrderStatusShipping:
		return "Dalam pengiriman"
	case orderModel.OrderStatusDelivered:
		return "Telah diterima"
	case orderModel.OrderStatusCancelled:
		return "Dibatalkan"
	default:
		return status
	}
}
