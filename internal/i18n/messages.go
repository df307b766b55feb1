package i18n

var catalog = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":                  "Invalid request",
		"error.unauthorized":                 "Please sign in to continue",
		"error.forbidden":                    "You are not allowed to do that",
		"error.not_found":                    "Not found",
		"error.internal_error":               "Something went wrong, please try again",
		"error.too_many_requests":            "Too many requests, please slow down",
		"error.rate_limit_login":             "Too many login attempts. Please try again in a minute.",
		"error.rate_limit_otp":               "Too many verification code requests. Please wait a minute.",
		"error.rate_limit_otp_verify":        "Too many verification attempts. Please try again later.",
		"error.rate_limit_phone":             "Too many sign-in attempts for this number. Please wait a minute.",
		"error.rate_limit_unavailable":       "Rate limiting is unavailable, please try again later",
		"error.validation":                   "Please check the highlighted fields",
		"error.name_required":                "Please enter your name",
		"error.email_invalid":                "Please enter a valid email address",
		"error.phone_invalid":                "Phone number must be exactly 10 digits",
		"error.address_too_long":             "Address is too long",
		"error.cart_empty":                   "Your cart is empty",
		"error.cart_item_invalid":            "Cart contains an invalid item",
		"error.cart_save_failed":             "Could not update your cart",
		"error.payment_method_invalid":       "Unsupported payment method",
		"error.payment_method_disabled":      "This payment method is currently unavailable",
		"error.store_closed":                 "The store is closed right now",
		"error.otp_dispatch_failed":          "Failed to send verification code",
		"error.otp_dispatch_recipient_rejected": "We could not deliver the code to that email address",
		"error.otp_dispatch_unavailable":        "Email delivery is unavailable right now, please try again later",
		"error.otp_invalid":                  "Invalid verification code",
		"error.otp_expired":                  "Verification code has expired, please request a new one",
		"error.otp_not_requested":            "Please request a verification code first",
		"error.otp_attempts_exceeded":        "Too many wrong codes, please request a new one",
		"error.otp_resend_too_soon":          "Please wait %d seconds before requesting another code",
		"error.checkout_session_not_found":   "Checkout session not found",
		"error.checkout_session_expired":     "Checkout session has expired, please start again",
		"error.checkout_stage_invalid":       "This checkout step is not available right now",
		"error.order_save_failed":            "Failed to place order",
		"error.persistence_failed":           "Could not save your changes, please try again",
		"error.order_not_found":              "Order not found",
		"error.order_status_invalid":         "Unknown order status",
		"error.order_transition_not_allowed": "Order cannot move from %s to %s",
		"error.admin_secret_invalid":         "Invalid password",
		"error.captcha_invalid":              "Captcha is incorrect",
		"error.product_not_found":            "Product not found",
		"error.product_invalid":              "Product details are invalid",
		"error.category_not_found":           "Category not found",
		"error.category_invalid":             "Category details are invalid",
		"error.category_slug_exists":         "A category with this slug already exists",
		"error.category_in_use":              "Category still has products",
		"error.settings_invalid":             "Store settings are invalid",
		"message.otp_sent":                   "Verification code sent to %s",
		"message.order_placed":               "Order placed successfully",
		"message.logged_out":                 "Signed out",
		"email.otp_subject":                  "Your Monu Chai Order Verification Code",
		"email.otp_body":                     "Your verification code is %s. It expires in %d minutes.",
		"email.order_placed_subject":         "Monu Chai order %s received",
		"email.order_placed_body":            "Hi %s, we received your order %s for %s. We will start preparing it shortly.",
		"email.order_status_subject":         "Monu Chai order %s is %s",
		"email.order_status_body":            "Hi %s, your order %s is now %s.",
	},
	LocaleHI: {
		"error.bad_request":                  "अमान्य अनुरोध",
		"error.unauthorized":                 "कृपया जारी रखने के लिए साइन इन करें",
		"error.forbidden":                    "आपको यह करने की अनुमति नहीं है",
		"error.not_found":                    "नहीं मिला",
		"error.internal_error":               "कुछ गलत हो गया, कृपया पुनः प्रयास करें",
		"error.too_many_requests":            "बहुत अधिक अनुरोध, कृपया थोड़ा रुकें",
		"error.rate_limit_login":             "बहुत अधिक लॉगिन प्रयास। कृपया एक मिनट बाद प्रयास करें।",
		"error.rate_limit_otp":               "बहुत अधिक कोड अनुरोध। कृपया एक मिनट रुकें।",
		"error.rate_limit_otp_verify":        "बहुत अधिक सत्यापन प्रयास। कृपया बाद में पुनः प्रयास करें।",
		"error.rate_limit_phone":             "इस नंबर से बहुत अधिक साइन-इन प्रयास। कृपया एक मिनट रुकें।",
		"error.rate_limit_unavailable":       "अभी सेवा उपलब्ध नहीं है, कृपया बाद में प्रयास करें",
		"error.validation":                   "कृपया चिह्नित फ़ील्ड जांचें",
		"error.name_required":                "कृपया अपना नाम दर्ज करें",
		"error.email_invalid":                "कृपया मान्य ईमेल पता दर्ज करें",
		"error.phone_invalid":                "फ़ोन नंबर ठीक 10 अंकों का होना चाहिए",
		"error.cart_empty":                   "आपकी कार्ट खाली है",
		"error.payment_method_disabled":      "यह भुगतान विधि अभी उपलब्ध नहीं है",
		"error.store_closed":                 "दुकान अभी बंद है",
		"error.otp_dispatch_failed":          "सत्यापन कोड भेजने में विफल",
		"error.otp_dispatch_recipient_rejected": "इस ईमेल पते पर कोड नहीं भेजा जा सका",
		"error.otp_invalid":                  "अमान्य सत्यापन कोड",
		"error.otp_expired":                  "सत्यापन कोड की समय सीमा समाप्त हो गई, नया कोड मांगें",
		"error.otp_not_requested":            "कृपया पहले सत्यापन कोड मांगें",
		"error.order_save_failed":            "ऑर्डर करने में विफल",
		"error.persistence_failed":           "बदलाव सहेजे नहीं जा सके, कृपया पुनः प्रयास करें",
		"error.order_not_found":              "ऑर्डर नहीं मिला",
		"error.admin_secret_invalid":         "अमान्य पासवर्ड",
		"message.order_placed":               "ऑर्डर सफलतापूर्वक दिया गया",
		"message.otp_sent":                   "सत्यापन कोड %s पर भेजा गया",
		"email.otp_subject":                  "आपका Monu Chai ऑर्डर सत्यापन कोड",
		"email.otp_body":                     "आपका सत्यापन कोड %s है। यह %d मिनट में समाप्त होगा।",
	},
}
