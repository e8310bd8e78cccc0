package templates

// Built-in templates. User-created templates of the same name shadow
// these at resolution time.
var builtinTemplates = map[string]string{
	"welcome": `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;margin:0;padding:24px;background:#f4f4f4;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;padding:32px;border-radius:8px;">
    <h1 style="color:#333333;">Welcome, {{name}}!</h1>
    <p>Thanks for joining us. Your account is ready to go.</p>
    <p><a href="{{cta_url}}" style="display:inline-block;padding:12px 24px;background:#2d7ff9;color:#ffffff;text-decoration:none;border-radius:4px;">Get started</a></p>
    <p style="color:#999999;font-size:12px;">Sent {{timestamp}} &middot; ref {{message_id}}</p>
  </div>
  <img src="{{tracking_url}}" width="1" height="1" alt="" style="display:none" />
</body>
</html>`,

	"newsletter": `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;margin:0;padding:24px;background:#f4f4f4;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;padding:32px;border-radius:8px;">
    <h1 style="color:#333333;">{{headline}}</h1>
    <div>{{body}}</div>
    <p><a href="{{read_more_url}}">Read more</a></p>
    <p style="color:#999999;font-size:12px;">Sent {{timestamp}}</p>
  </div>
  <img src="{{tracking_url}}" width="1" height="1" alt="" style="display:none" />
</body>
</html>`,

	"promotion": `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;margin:0;padding:24px;background:#f4f4f4;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;padding:32px;border-radius:8px;">
    <h1 style="color:#d33;">{{offer}}</h1>
    <p>Hi {{name}}, this offer expires {{expires}}.</p>
    <p><a href="{{offer_url}}" style="display:inline-block;padding:12px 24px;background:#d33;color:#ffffff;text-decoration:none;border-radius:4px;">Claim offer</a></p>
  </div>
  <img src="{{tracking_url}}" width="1" height="1" alt="" style="display:none" />
</body>
</html>`,

	"password_reset": `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;margin:0;padding:24px;">
  <div style="max-width:600px;margin:0 auto;">
    <h2>Password reset</h2>
    <p>We received a request to reset the password for {{email}}.</p>
    <p><a href="{{reset_url}}">Reset your password</a></p>
    <p>If you did not request this, you can ignore this email.</p>
  </div>
  <img src="{{tracking_url}}" width="1" height="1" alt="" style="display:none" />
</body>
</html>`,

	"receipt": `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;margin:0;padding:24px;">
  <div style="max-width:600px;margin:0 auto;">
    <h2>Receipt for order {{order_id}}</h2>
    <p>Hi {{name}}, we received your payment of {{amount}}.</p>
    <p><a href="{{order_url}}">View your order</a></p>
    <p style="color:#999999;font-size:12px;">ref {{message_id}}</p>
  </div>
  <img src="{{tracking_url}}" width="1" height="1" alt="" style="display:none" />
</body>
</html>`,
}

// defaultSubjects maps known template names to subject lines.
var defaultSubjects = map[string]string{
	"welcome":        "Welcome aboard!",
	"newsletter":     "Your latest update",
	"promotion":      "A special offer for you",
	"password_reset": "Reset your password",
	"receipt":        "Your receipt",
}

// genericSubject is the fallback for unrecognized template names; the
// subject lookup never fails.
const genericSubject = "A message for you"
