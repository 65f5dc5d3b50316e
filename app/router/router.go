package router

import (
	"net/http"
	"strings"

	"visual-product-builder/app/controller"
)

type Controllers struct {
	Element      *controller.ElementController
	Collection   *controller.CollectionController
	Configurator *controller.ConfiguratorController
	Cart         *controller.CartController
	Order        *controller.OrderController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers, auth *Middleware) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Configurator session routes (shopper-facing AJAX surface)
	http.HandleFunc("/configurator/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			controllers.Configurator.Create(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	http.HandleFunc("/configurator/sessions/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/configurator/sessions/")

		// Route to specific actions first
		if strings.HasSuffix(path, "/elements") && r.Method == http.MethodPost {
			controllers.Configurator.AddElement(w, r)
			return
		}
		if strings.HasSuffix(path, "/undo") && r.Method == http.MethodPost {
			controllers.Configurator.Undo(w, r)
			return
		}
		if strings.HasSuffix(path, "/reset") && r.Method == http.MethodPost {
			controllers.Configurator.Reset(w, r)
			return
		}
		if strings.HasSuffix(path, "/reorder") && r.Method == http.MethodPost {
			controllers.Configurator.Reorder(w, r)
			return
		}
		if strings.HasSuffix(path, "/submit") && r.Method == http.MethodPost {
			controllers.Configurator.Submit(w, r)
			return
		}

		// Otherwise, treat as GET /configurator/sessions/:id
		if r.Method == http.MethodGet && !strings.Contains(path, "/") {
			controllers.Configurator.Get(w, r)
			return
		}

		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Cart routes
	http.HandleFunc("/cart/items", controllers.Cart.AddItem)

	http.HandleFunc("/cart/items/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			controllers.Cart.DeleteItem(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	http.HandleFunc("/cart/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Cart.GetCart(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Checkout
	http.HandleFunc("/checkout", controllers.Order.Checkout)

	// Element catalog routes (admin)
	http.HandleFunc("/admin/elements", auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Element.List(w, r)
		} else if r.Method == http.MethodPost {
			controllers.Element.Create(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	http.HandleFunc("/admin/elements/bulk-price", auth.RequireAuth(controllers.Element.BulkPrice))

	http.HandleFunc("/admin/elements/import", auth.RequireAuth(controllers.Element.Import))

	// Element by id - handles GET, PUT and DELETE
	http.HandleFunc("/admin/elements/", auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Element.Get(w, r)
		} else if r.Method == http.MethodPut {
			controllers.Element.Update(w, r)
		} else if r.Method == http.MethodDelete {
			controllers.Element.Delete(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Collection routes (admin)
	http.HandleFunc("/admin/collections", auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Collection.List(w, r)
		} else if r.Method == http.MethodPost {
			controllers.Collection.Create(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	http.HandleFunc("/admin/collections/", auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/collections/")

		if strings.HasSuffix(path, "/elements") && r.Method == http.MethodPost {
			controllers.Collection.AssignElement(w, r)
			return
		}
		if strings.HasSuffix(path, "/products") && (r.Method == http.MethodPost || r.Method == http.MethodDelete) {
			controllers.Collection.LinkProduct(w, r)
			return
		}

		if r.Method == http.MethodGet {
			controllers.Collection.Get(w, r)
		} else if r.Method == http.MethodPut {
			controllers.Collection.Update(w, r)
		} else if r.Method == http.MethodDelete {
			controllers.Collection.Delete(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Order routes (admin)
	http.HandleFunc("/admin/orders/", auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/orders/")

		if strings.HasSuffix(path, "/sheet") {
			controllers.Order.Sheet(w, r)
			return
		}
		if strings.HasSuffix(path, "/thumbnail") {
			controllers.Order.Thumbnail(w, r)
			return
		}

		if r.Method == http.MethodGet {
			controllers.Order.GetOrder(w, r)
			return
		}

		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}))
}
